package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/eventhub/pkg/logger"
)

func TestAttrs(t *testing.T) {
	t.Run("nil error is empty", func(t *testing.T) {
		assert.Equal(t, slog.Attr{}, logger.Error(nil))
		assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))
	})

	t.Run("errors are indexed", func(t *testing.T) {
		attr := logger.Errors(nil, errors.New("b"))
		assert.Equal(t, "errors", attr.Key)
		group := attr.Value.Group()
		assert.Len(t, group, 1)
		assert.Equal(t, "1", group[0].Key)
	})

	t.Run("empty values are skipped", func(t *testing.T) {
		assert.Equal(t, slog.Attr{}, logger.Username(""))
		assert.Equal(t, slog.Attr{}, logger.Role(""))
		assert.Equal(t, slog.Attr{}, logger.Expiry(time.Time{}))
	})

	t.Run("keys", func(t *testing.T) {
		assert.Equal(t, "username", logger.Username("admin").Key)
		assert.Equal(t, "storage_key", logger.StorageKey("auth_session").Key)
		assert.Equal(t, "driver", logger.Driver("file").Key)
		assert.Equal(t, "duration", logger.Duration(time.Second).Key)
		assert.Equal(t, "event", logger.Event("login").Key)
	})
}
