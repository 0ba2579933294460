package builder

import "github.com/Tsinling0525/flowsmith/model"

// Layout is the fixed grid nodes are placed on.
type Layout struct {
	StartX   float64 `mapstructure:"start_x" validate:"gte=0"`
	StartY   float64 `mapstructure:"start_y" validate:"gte=0"`
	XSpacing float64 `mapstructure:"x_spacing" validate:"gt=0"`
	YSpacing float64 `mapstructure:"y_spacing" validate:"gt=0"`
}

func DefaultLayout() Layout {
	return Layout{StartX: 250, StartY: 300, XSpacing: 220, YSpacing: 180}
}

// Indexed is the position of the i-th node when a draft supplies none.
func (l Layout) Indexed(i int) model.Position {
	return model.Position{X: l.StartX + float64(i)*l.XSpacing, Y: l.StartY}
}

