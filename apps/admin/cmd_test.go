package main

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/prajyots60/myskill-agenda/core"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func setup() *commandLine {
	conf := &core.Config{SecretKey: "test-secret"}
	conf.Server.JWTExpirationDelta = time.Hour
	return &commandLine{
		conf:  conf,
		clock: fixedClock{time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)},
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup()

	origMigrate := migrateFunc
	migrateFunc = func(*sqlx.DB) error { return nil }
	defer func() { migrateFunc = origMigrate }()

	tests := []struct {
		name    string
		args    []string // without program name
		wantErr error
	}{
		{name: "no subcommand", args: nil, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate", args: []string{"migrate"}},
		{name: "token: missing flags", args: []string{"token"}, wantErr: errHelp},
		{name: "token: student", args: []string{"token", "-viewer", "v1", "-email", "v1@test.test"}},
		{name: "token: creator", args: []string{"token", "-viewer", "c1", "-email", "c1@test.test", "-creator"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
