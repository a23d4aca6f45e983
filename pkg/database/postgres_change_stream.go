package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ventrath/gantry/pkg/database/changes"
	"github.com/ventrath/gantry/pkg/structs"
)

type pgChangeStream struct {
	ctx    context.Context
	conn   *pgxpool.Conn
	closed bool
}

type pgRawPayload struct {
	Table string `json:"table"`
}

type pgRunPayload struct {
	Old *structs.Run `json:"old"`
	New *structs.Run `json:"new"`
}

type pgJobPayload struct {
	Old *structs.Job `json:"old"`
	New *structs.Job `json:"new"`
}

type pgStepPayload struct {
	Old *structs.Step `json:"old"`
	New *structs.Step `json:"new"`
}

func (p *pgChangeStream) Next() (*changes.Change, error) {
	if p.closed {
		return nil, nil
	}

	notification, err := p.conn.Conn().WaitForNotification(p.ctx)
	if err != nil {
		return nil, err
	}

	payload := pgRawPayload{}
	err = json.Unmarshal([]byte(notification.Payload), &payload)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(payload.Table, "r") {
		run := pgRunPayload{}
		err = json.Unmarshal([]byte(notification.Payload), &run)
		return &changes.Change{Old: run.Old, New: run.New, Kind: structs.KindRun}, err
	} else if strings.HasPrefix(payload.Table, "j") {
		job := pgJobPayload{}
		err = json.Unmarshal([]byte(notification.Payload), &job)
		return &changes.Change{Old: job.Old, New: job.New, Kind: structs.KindJob}, err
	} else if strings.HasPrefix(payload.Table, "s") {
		stp := pgStepPayload{}
		err = json.Unmarshal([]byte(notification.Payload), &stp)
		return &changes.Change{Old: stp.Old, New: stp.New, Kind: structs.KindStep}, err
	}

	return nil, fmt.Errorf("unknown kind for table %s", payload.Table)
}

func (p *pgChangeStream) Close() error {
	p.closed = true
	p.conn.Release()
	return nil
}
