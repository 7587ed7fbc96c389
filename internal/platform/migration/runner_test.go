// Copyright (c) 2026 Gravity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/gravity?sslmode=disable", "pgx5://u:p@db:5432/gravity?sslmode=disable"},
		{"postgresql://u:p@db/gravity", "pgx5://u:p@db/gravity"},
		{"pgx5://u:p@db/gravity", "pgx5://u:p@db/gravity"},
		{"host=db user=u dbname=gravity", "host=db user=u dbname=gravity"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, pgx5DSN(tt.in))
		})
	}
}
