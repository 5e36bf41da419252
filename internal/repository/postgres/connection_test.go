package postgres

import (
	"context"
	"testing"

	"studiodrive/internal/domain/repositories"
)

func TestLockClauses(t *testing.T) {
	base := context.Background()
	inTx := repositories.MarkInTx(base)
	deleting := repositories.WithWriteIntent(inTx)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"row outside tx", RowLock(base), ""},
		{"row in tx", RowLock(inTx), "FOR KEY SHARE"},
		{"row with write intent", RowLock(deleting), "FOR UPDATE"},
		{"row of alias", RowLock(deleting, "fi"), "FOR UPDATE OF fi"},
		{"intent outside tx", RowLock(repositories.WithWriteIntent(base)), ""},
		{"key share ignores intent", KeyShareLock(deleting, "fo"), "FOR KEY SHARE OF fo"},
		{"grant levels outside tx", GrantLevelLock(base), ""},
		{"grant levels in tx", GrantLevelLock(inTx), "FOR SHARE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
