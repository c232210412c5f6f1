package entity

import (
	"time"
)

const (
	ConnectionStatusIdle ConnectionStatus = iota
	ConnectionStatusInMatch
)

const (
	ControllerHuman ControllerKind = iota + 1
	ControllerBot
)

type ConnectionStatus uint8
type ControllerKind uint8

func (s ConnectionStatus) String() string {
	switch s {
	case ConnectionStatusIdle:
		return "idle"
	case ConnectionStatusInMatch:
		return "in_match"
	default:
		return "unknown"
	}
}

func (k ControllerKind) String() string {
	switch k {
	case ControllerHuman:
		return "human"
	case ControllerBot:
		return "bot"
	default:
		return "unknown"
	}
}

// Controller who drives a connection: a remote peer or the engine's AI.
// Exactly one of Peer and Bot is set, according to Kind.
type Controller struct {
	Kind ControllerKind
	Peer Peer
	Bot  *BotParams
}

// BotParams AI behaviour of a bot connection
type BotParams struct {
	Name              string
	FarDistance       float64
	NearDistance      float64
	LightAttackChance float64
	HeavyAttackChance float64
	JumpChance        float64
}

func HumanController(p Peer) Controller {
	return Controller{Kind: ControllerHuman, Peer: p}
}

func BotController(params *BotParams) Controller {
	return Controller{Kind: ControllerBot, Bot: params}
}

// Connection a participant known to the engine
type Connection struct {
	ID           string
	Controller   Controller
	Status       ConnectionStatus
	Profile      *Profile
	StakeID      string
	SessionID    string
	CreatedAt    time.Time
	LastActivity time.Time
}

func (c *Connection) IsBot() bool {
	return c.Controller.Kind == ControllerBot
}

func (c *Connection) IsIdle() bool {
	return c.Status == ConnectionStatusIdle
}

// Send delivers msg to a human peer, bots have nothing to deliver to
func (c *Connection) Send(msg *Message) error {
	switch c.Controller.Kind {
	case ControllerHuman:
		if c.Controller.Peer == nil {
			return ErrConnectionClosed
		}
		return c.Controller.Peer.Send(msg)
	case ControllerBot:
		return nil
	}
	return ErrInternalError
}

// PublicID identity shown to the opponent and the ledger
func (c *Connection) PublicID() string {
	if c.Profile != nil && c.Profile.Address != "" {
		return c.Profile.Address
	}
	return c.ID
}

func (c *Connection) RemoteAddr() string {
	if c.Controller.Kind == ControllerHuman && c.Controller.Peer != nil {
		return c.Controller.Peer.RemoteAddr()
	}
	return ""
}

// PlayerInfo public profile of c
func (c *Connection) PlayerInfo() *PlayerInfo {
	info := &PlayerInfo{
		ID:  c.ID,
		Bot: c.IsBot(),
	}
	if c.IsBot() && c.Controller.Bot != nil {
		info.Name = c.Controller.Bot.Name
	}
	if c.Profile != nil {
		info.Address = c.Profile.Address
		info.Name = c.Profile.Name
		info.Cosmetics = c.Profile.Cosmetics
	}
	return info
}
