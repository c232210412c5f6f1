package main

import (
	"bufio"
	"encoding/json"
	"os"
)

// scanLog calls f for every engine log line with the given message
func scanLog(logFile, message string, f func(ev *LogEntity)) error {
	fi, err := os.Open(logFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := fi.Close(); err != nil {
			zlog.Error().Err(err).Msg("failed to close log file")
		}
	}()

	scanner := bufio.NewScanner(fi)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		ev := &LogEntity{}
		if err := json.Unmarshal(scanner.Bytes(), ev); err != nil {
			zlog.Error().Err(err).Msg("failed to unmarshal log line")
			continue
		}
		if ev.Layer != engineLayer || ev.Message != message {
			continue
		}
		f(ev)
	}

	return scanner.Err()
}
