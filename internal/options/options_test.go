package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// stampConfig mimics the kind of config struct the public packages feed
// through this package (stamp extraction knobs).
type stampConfig struct {
	Width      int
	Convention string
	KeepHeader bool
	LastCall   string
}

func (c *stampConfig) SetWidth(w int) error {
	if w < 1 {
		return errors.New("width must be at least 1")
	}
	c.Width = w
	c.LastCall = "SetWidth"

	return nil
}

func (c *stampConfig) SetConvention(name string) {
	c.Convention = name
	c.LastCall = "SetConvention"
}

func (c *stampConfig) SetKeepHeader(keep bool) {
	c.KeepHeader = keep
	c.LastCall = "SetKeepHeader"
}

func TestOption_New(t *testing.T) {
	config := &stampConfig{}

	t.Run("creates option that can return error", func(t *testing.T) {
		opt := New(func(c *stampConfig) error {
			return c.SetWidth(384)
		})

		err := opt.apply(config)
		require.NoError(t, err)
		require.Equal(t, 384, config.Width)
		require.Equal(t, "SetWidth", config.LastCall)
	})

	t.Run("propagates errors from option function", func(t *testing.T) {
		opt := New(func(c *stampConfig) error {
			return c.SetWidth(0)
		})

		err := opt.apply(config)
		require.Error(t, err)
		require.Contains(t, err.Error(), "width must be at least 1")
	})
}

func TestOption_NoError(t *testing.T) {
	config := &stampConfig{}

	opt := NoError(func(c *stampConfig) {
		c.SetConvention("sextractor")
	})

	err := opt.apply(config)
	require.NoError(t, err)
	require.Equal(t, "sextractor", config.Convention)
	require.Equal(t, "SetConvention", config.LastCall)
}

func TestOption_Apply(t *testing.T) {
	t.Run("applies multiple options in order", func(t *testing.T) {
		config := &stampConfig{}
		opts := []Option[*stampConfig]{
			New(func(c *stampConfig) error { return c.SetWidth(64) }),
			NoError(func(c *stampConfig) { c.SetConvention("numpy") }),
			NoError(func(c *stampConfig) { c.SetKeepHeader(true) }),
		}

		err := Apply(config, opts...)
		require.NoError(t, err)
		require.Equal(t, 64, config.Width)
		require.Equal(t, "numpy", config.Convention)
		require.True(t, config.KeepHeader)
		require.Equal(t, "SetKeepHeader", config.LastCall)
	})

	t.Run("stops at first error and returns it", func(t *testing.T) {
		config := &stampConfig{}

		opts := []Option[*stampConfig]{
			New(func(c *stampConfig) error { return c.SetWidth(32) }),
			New(func(c *stampConfig) error { return c.SetWidth(-4) }),
			NoError(func(c *stampConfig) { c.SetConvention("should not be set") }),
		}

		err := Apply(config, opts...)
		require.Error(t, err)
		require.Contains(t, err.Error(), "width must be at least 1")
		require.Equal(t, 32, config.Width)
		require.Equal(t, "", config.Convention)
		require.Equal(t, "SetWidth", config.LastCall)
	})

	t.Run("works with empty options slice", func(t *testing.T) {
		config := &stampConfig{}
		err := Apply(config)
		require.NoError(t, err)
		require.Equal(t, 0, config.Width)
		require.Equal(t, "", config.Convention)
		require.False(t, config.KeepHeader)
	})
}

func TestOption_Integration(t *testing.T) {
	// Helper constructors in the public WithXxx shape
	withWidth := func(w int) Option[*stampConfig] {
		return New(func(c *stampConfig) error {
			return c.SetWidth(w)
		})
	}

	withConvention := func(name string) Option[*stampConfig] {
		return NoError(func(c *stampConfig) {
			c.SetConvention(name)
		})
	}

	config := &stampConfig{}
	err := Apply(config,
		withWidth(128),
		withConvention("numpy"),
	)

	require.NoError(t, err)
	require.Equal(t, 128, config.Width)
	require.Equal(t, "numpy", config.Convention)
}

func TestOption_GenericsWithDifferentTypes(t *testing.T) {
	t.Run("works with simple struct", func(t *testing.T) {
		type labeled struct{ Label string }
		s := &labeled{}
		opt := NoError(func(l *labeled) {
			l.Label = "SEGMAP"
		})

		err := opt.apply(s)
		require.NoError(t, err)
		require.Equal(t, "SEGMAP", s.Label)
	})

	t.Run("works with primitive types", func(t *testing.T) {
		var rows int
		opt := NoError(func(n *int) {
			*n = 256
		})

		err := opt.apply(&rows)
		require.NoError(t, err)
		require.Equal(t, 256, rows)
	})
}
