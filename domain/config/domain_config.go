package config

import (
	"fmt"

	"github.com/varangian-core/magical-board/domain/core/valueobjects"
)

// DomainConfig holds the board and timeline rules. Values can be
// overridden from the `domain:` block of the YAML config file.
type DomainConfig struct {
	// Element defaults
	DefaultElementX      float64 `yaml:"default_element_x"`
	DefaultElementY      float64 `yaml:"default_element_y"`
	DefaultElementWidth  float64 `yaml:"default_element_width"`
	DefaultElementHeight float64 `yaml:"default_element_height"`
	AnonymousUserID      string  `yaml:"anonymous_user_id"`
	DefaultCardText      string  `yaml:"default_card_text"`
	DefaultCardColor     string  `yaml:"default_card_color"`

	// Timeline placement
	TimelineOriginX   float64 `yaml:"timeline_origin_x"`
	TimelineOriginY   float64 `yaml:"timeline_origin_y"`
	VerticalSpacing   float64 `yaml:"vertical_spacing"`
	HorizontalSpacing float64 `yaml:"horizontal_spacing"`
	BranchOffsetX     float64 `yaml:"branch_offset_x"`
	BranchOffsetY     float64 `yaml:"branch_offset_y"`
	MilestoneOffsetX  float64 `yaml:"milestone_offset_x"`
	MilestoneOffsetY  float64 `yaml:"milestone_offset_y"`

	// Timeline geometry
	TimeNodeHalfWidth  float64 `yaml:"time_node_half_width"`
	TimeNodeHalfHeight float64 `yaml:"time_node_half_height"`
	MilestoneRadius    float64 `yaml:"milestone_radius"`
	TimelinePadding    float64 `yaml:"timeline_padding"`
	TimelineHeader     float64 `yaml:"timeline_header"`
	TimelineMinWidth   float64 `yaml:"timeline_min_width"`
	TimelineMinHeight  float64 `yaml:"timeline_min_height"`
	SnapRadius         float64 `yaml:"snap_radius"`

	// Connection rules
	AllowSelfConnections      bool `yaml:"allow_self_connections"`
	AllowDuplicateConnections bool `yaml:"allow_duplicate_connections"`

	// Image storage
	MaxImageStorageBytes int64 `yaml:"max_image_storage_bytes"`
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		DefaultElementX:      100,
		DefaultElementY:      100,
		DefaultElementWidth:  300,
		DefaultElementHeight: 200,
		AnonymousUserID:      "anonymous",
		DefaultCardText:      "New Card",
		DefaultCardColor:     "#FFB6E1",

		TimelineOriginX:   80,
		TimelineOriginY:   80,
		VerticalSpacing:   100,
		HorizontalSpacing: 150,
		BranchOffsetX:     100,
		BranchOffsetY:     100,
		MilestoneOffsetX:  80,
		MilestoneOffsetY:  60,

		TimeNodeHalfWidth:  60,
		TimeNodeHalfHeight: 30,
		MilestoneRadius:    25,
		TimelinePadding:    100,
		TimelineHeader:     40,
		TimelineMinWidth:   600,
		TimelineMinHeight:  400,
		SnapRadius:         50,

		AllowSelfConnections:      false,
		AllowDuplicateConnections: false,

		MaxImageStorageBytes: 50 * 1024 * 1024,
	}
}

// Validate checks that the geometry is usable
func (c *DomainConfig) Validate() error {
	if c.DefaultElementWidth < valueobjects.MinDimension || c.DefaultElementHeight < valueobjects.MinDimension {
		return fmt.Errorf("default element size %vx%v is below the %v floor",
			c.DefaultElementWidth, c.DefaultElementHeight, valueobjects.MinDimension)
	}
	if c.TimelineMinWidth < valueobjects.MinDimension || c.TimelineMinHeight < valueobjects.MinDimension {
		return fmt.Errorf("timeline minimum size %vx%v is below the %v floor",
			c.TimelineMinWidth, c.TimelineMinHeight, valueobjects.MinDimension)
	}
	if c.SnapRadius < 0 {
		return fmt.Errorf("snap_radius cannot be negative")
	}
	if c.MaxImageStorageBytes <= 0 {
		return fmt.Errorf("max_image_storage_bytes must be positive")
	}
	if c.AnonymousUserID == "" {
		return fmt.Errorf("anonymous_user_id cannot be empty")
	}
	return nil
}
