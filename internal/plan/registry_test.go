package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotaFor(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name string
		plan Plan
		want int64
	}{
		{"free", Free, 3},
		{"servicio", Servicio, 10},
		{"tienda is unlimited", Tienda, Unlimited},
		{"unknown plan falls back to free", Plan("enterprise"), 3},
		{"empty plan falls back to free", Plan(""), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.QuotaFor(tt.plan))
		})
	}
}

func TestNewRegistryCustomQuotas(t *testing.T) {
	r := NewRegistry(map[Plan]int64{Free: 1, Servicio: 5, Tienda: 20})

	assert.Equal(t, int64(1), r.QuotaFor(Free))
	assert.Equal(t, int64(5), r.QuotaFor(Servicio))
	assert.Equal(t, int64(20), r.QuotaFor(Tienda))
	assert.Equal(t, int64(1), r.QuotaFor(Plan("unknown")))
}

func TestNewRegistryCopiesInput(t *testing.T) {
	quotas := map[Plan]int64{Free: 3}
	r := NewRegistry(quotas)

	quotas[Free] = 99
	assert.Equal(t, int64(3), r.QuotaFor(Free))
}

func TestParse(t *testing.T) {
	assert.Equal(t, Free, Parse("free"))
	assert.Equal(t, Servicio, Parse("servicio"))
	assert.Equal(t, Tienda, Parse("tienda"))
	assert.Equal(t, Free, Parse("premium"))
	assert.Equal(t, Free, Parse(""))
}
