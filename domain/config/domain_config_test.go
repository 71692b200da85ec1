package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDomainConfigIsValid(t *testing.T) {
	cfg := DefaultDomainConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, int64(50*1024*1024), cfg.MaxImageStorageBytes)
	assert.False(t, cfg.AllowSelfConnections)
	assert.False(t, cfg.AllowDuplicateConnections)
}

func TestDomainConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *DomainConfig)
	}{
		{"default size below floor", func(c *DomainConfig) { c.DefaultElementWidth = 10 }},
		{"timeline below floor", func(c *DomainConfig) { c.TimelineMinHeight = 20 }},
		{"negative snap", func(c *DomainConfig) { c.SnapRadius = -1 }},
		{"no quota", func(c *DomainConfig) { c.MaxImageStorageBytes = 0 }},
		{"empty anonymous id", func(c *DomainConfig) { c.AnonymousUserID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDomainConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
