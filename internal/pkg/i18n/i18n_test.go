package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranslator_InvalidDefault(t *testing.T) {
	_, err := NewTranslator("not a locale!")
	assert.Error(t, err)
}

func TestTranslator_Match(t *testing.T) {
	tr, err := NewTranslator("en")
	require.NoError(t, err)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"id-ID,id;q=0.9,en;q=0.8", "id"},
		{"fr-FR,fr;q=0.9", "en"},
		{"en-US", "en"},
		{";;;", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Match(tt.header))
		})
	}
}

func TestTranslator_T(t *testing.T) {
	tr, err := NewTranslator("en")
	require.NoError(t, err)

	// Nothing bound: the ID comes back.
	assert.Equal(t, "leave.not_found", T(context.Background(), "leave.not_found"))

	ctx := NewContext(context.Background(), tr, "en")
	assert.Equal(t, "Leave request not found", T(ctx, "leave.not_found"))

	ctx = NewContext(context.Background(), tr, "id")
	assert.Equal(t, "id", LocaleFromContext(ctx))
	assert.Equal(t, "Pengajuan cuti tidak ditemukan", T(ctx, "leave.not_found"))

	// Unknown IDs come back unchanged.
	assert.Equal(t, "no.such.message", T(ctx, "no.such.message"))
}

func TestLocaleCatalogsHaveTheSameKeys(t *testing.T) {
	en, err := NewTranslator("en")
	require.NoError(t, err)

	for _, tag := range en.bundle.LanguageTags() {
		for _, id := range []string{"error.internal", "payroll.already_paid", "attendance.checked_out"} {
			assert.NotEqual(t, id, en.Translate(tag.String(), id, nil), "%s missing in %s", id, tag)
		}
	}
}
