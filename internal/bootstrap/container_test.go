package bootstrap

import (
	"errors"
	"path/filepath"
	"testing"

	"pin-support-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestCloseOnErrorReleasesInReverse(t *testing.T) {
	c := &Container{Logger: logger.NewZapLogger(filepath.Join(t.TempDir(), "app.log"), false)}
	var order []string
	c.closers = append(c.closers,
		func() error { order = append(order, "db"); return nil },
		func() error { order = append(order, "redis"); return errors.New("already closed") },
		func() error { order = append(order, "bus"); return nil },
	)

	var err error
	c.closeOnError(&err)
	assert.Empty(t, order)

	err = errors.New("nats down")
	c.closeOnError(&err)
	assert.Equal(t, []string{"bus", "redis", "db"}, order)
	assert.EqualError(t, err, "nats down")
}

