package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "case folded and trimmed", in: "  Alice@KU.ac.KE ", want: "alice@ku.ac.ke"},
		{name: "subdomain kept", in: "bob@cs.ku.ac.ke", want: "bob@cs.ku.ac.ke"},
		{name: "double at", in: "a@b@ku.ac.ke", wantErr: true},
		{name: "missing local part", in: "@ku.ac.ke", wantErr: true},
		{name: "missing domain", in: "alice@", wantErr: true},
		{name: "single label domain", in: "alice@localhost", wantErr: true},
		{name: "space in local part", in: "al ice@ku.ac.ke", wantErr: true},
		{name: "no at", in: "alice.ku.ac.ke", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	label := strings.Repeat("a", 63)
	tooLong := strings.Join([]string{label, label, label, label}, ".")
	require.Greater(t, len(tooLong), 253)

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "case folded", in: "KU.AC.KE", want: "ku.ac.ke"},
		{name: "leading at stripped", in: "@ku.ac.ke", want: "ku.ac.ke"},
		{name: "whitespace trimmed", in: " newschool.edu ", want: "newschool.edu"},
		{name: "inner hyphen", in: "new-school.edu", want: "new-school.edu"},
		{name: "longest label", in: label + ".edu", want: label + ".edu"},
		{name: "single label", in: "ku", wantErr: true},
		{name: "leading hyphen", in: "-ku.ac.ke", wantErr: true},
		{name: "empty label", in: "ku..ac.ke", wantErr: true},
		{name: "label over 63", in: label + "a.edu", wantErr: true},
		{name: "longer than 253", in: tooLong, wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDomain(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasDomain(t *testing.T) {
	tests := []struct {
		email  string
		domain string
		want   bool
	}{
		{"a@ku.ac.ke", "ku.ac.ke", true},
		{"A@KU.AC.KE", "ku.ac.ke", true},
		{"a@ku.ac.ke", "KU.ac.ke", true},
		{"a@cs.ku.ac.ke", "ku.ac.ke", false},
		{"a@notku.ac.ke", "ku.ac.ke", false},
		{"a@ku.ac.ke.evil.com", "ku.ac.ke", false},
		{"ku.ac.ke", "ku.ac.ke", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasDomain(tt.email, tt.domain), "%s in %s", tt.email, tt.domain)
	}
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "ku.ac.ke", DomainOf("Alice@KU.ac.ke"))
	assert.Equal(t, "ku.ac.ke", DomainOf("a@b@ku.ac.ke"))
	assert.Empty(t, DomainOf("no-at-sign"))
}
