// Package ledger gRPC client of the match ledger service. Requests are sent
// as google.protobuf.Struct documents so the service needs no generated stubs.
package ledger

import (
	"context"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/logger"
	"github.com/forest33/arena/pkg/structs"
)

const (
	MethodRecordMatch       = "/arena.ledger.v1.Ledger/RecordMatch"
	MethodUpsertPlayerStats = "/arena.ledger.v1.Ledger/UpsertPlayerStats"
)

type Client struct {
	cfg  *entity.LedgerConfig
	log  *logger.Logger
	conn *grpc.ClientConn
}

func New(cfg *entity.LedgerConfig, log *logger.Logger) (*Client, error) {
	conn, err := grpc.Dial(cfg.Address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:  cfg,
		log:  log.Layer("ledger"),
		conn: conn,
	}, nil
}

func (c *Client) RecordMatch(ctx context.Context, o *entity.MatchOutcome) error {
	req, err := structpb.NewStruct(outcomeToFields(o))
	if err != nil {
		return errors.Wrap(err, "failed to encode outcome")
	}

	return c.invoke(ctx, MethodRecordMatch, req)
}

func (c *Client) UpsertPlayerStats(ctx context.Context, s *entity.PlayerStats) error {
	req, err := structpb.NewStruct(map[string]interface{}{
		"playerId": s.PlayerID,
		"name":     s.Name,
		"matchId":  s.MatchID,
		"wins":     s.Wins,
		"losses":   s.Losses,
		"draws":    s.Draws,
		"coins":    s.Coins,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode player stats")
	}

	return c.invoke(ctx, MethodUpsertPlayerStats, req)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct) error {
	err := c.conn.Invoke(ctx, method, req, &empty.Empty{})
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Msg("ledger call failed")
	}

	switch status.Code(err) {
	case codes.OK:
		return nil
	case codes.Unavailable, codes.DeadlineExceeded:
		return errors.Wrap(entity.ErrLedgerUnavailable, err.Error())
	default:
		return errors.Wrap(err, method)
	}
}

func outcomeToFields(o *entity.MatchOutcome) map[string]interface{} {
	players := structs.Map(o.Players[:], func(p entity.OutcomePlayer) interface{} {
		return map[string]interface{}{
			"id":    p.ID,
			"name":  p.Name,
			"hp":    p.HP,
			"bot":   p.Bot,
			"won":   p.Won,
			"coins": p.Coins,
		}
	})

	return map[string]interface{}{
		"matchId":    o.MatchID,
		"players":    players,
		"winner":     o.Winner,
		"loser":      o.Loser,
		"draw":       o.IsDraw(),
		"reason":     string(o.Reason),
		"stakeId":    o.StakeID,
		"private":    o.Private,
		"ai":         o.AI,
		"ticks":      o.Ticks,
		"startedAt":  o.StartedAt.UTC().Format(time.RFC3339Nano),
		"endedAt":    o.EndedAt.UTC().Format(time.RFC3339Nano),
		"durationMs": o.Duration().Milliseconds(),
	}
}

var _ entity.Ledger = (*Client)(nil)
