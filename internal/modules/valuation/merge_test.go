package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/stock-valuator/internal/domain"
	"github.com/aristath/stock-valuator/pkg/coerce"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		primary  domain.Fundamentals
		fallback domain.Fundamentals
		want     domain.Fundamentals
	}{
		{
			name: "primary wins when both present",
			primary: domain.Fundamentals{
				EPS:        coerce.Float64(10),
				TrailingPE: coerce.Float64(20),
				IndustryPE: coerce.Float64(18),
			},
			fallback: domain.Fundamentals{
				EPS:        coerce.Float64(11),
				TrailingPE: coerce.Float64(22),
			},
			want: domain.Fundamentals{
				EPS:        coerce.Float64(10),
				TrailingPE: coerce.Float64(20),
				IndustryPE: coerce.Float64(18),
			},
		},
		{
			name:    "fallback fills gaps field-wise",
			primary: domain.Fundamentals{EPS: coerce.Float64(10)},
			fallback: domain.Fundamentals{
				EPS:        coerce.Float64(11),
				TrailingPE: coerce.Float64(22),
			},
			want: domain.Fundamentals{
				EPS:        coerce.Float64(10),
				TrailingPE: coerce.Float64(22),
			},
		},
		{
			name:     "both absent stays absent",
			primary:  domain.Fundamentals{},
			fallback: domain.Fundamentals{},
			want:     domain.Fundamentals{},
		},
		{
			name:     "fallback only",
			primary:  domain.Fundamentals{},
			fallback: domain.Fundamentals{EPS: coerce.Float64(5), TrailingPE: coerce.Float64(9)},
			want:     domain.Fundamentals{EPS: coerce.Float64(5), TrailingPE: coerce.Float64(9)},
		},
		{
			name: "forward EPS comes only from primary",
			primary: domain.Fundamentals{
				ForwardEPS: coerce.Float64(12),
			},
			fallback: domain.Fundamentals{
				// The scraper never yields forward EPS; even if it did,
				// the merged record would ignore it.
			},
			want: domain.Fundamentals{ForwardEPS: coerce.Float64(12)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.primary, tt.fallback))
		})
	}
}
