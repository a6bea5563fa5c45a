package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/postbox/internal/core/message"
)

func TestEncode(t *testing.T) {
	data, err := Encode(message.Record{Username: "alice", Message: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice","message":"hi"}`, string(data))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    message.Record
		wantErr bool
	}{
		{
			name:    "full record",
			payload: `{"username": "alice", "message": "hi"}`,
			want:    message.Record{Username: "alice", Message: "hi"},
		},
		{
			name:    "missing fields default to empty",
			payload: `{}`,
			want:    message.Record{},
		},
		{
			name:    "unknown fields ignored",
			payload: `{"username":"bob","extra":1}`,
			want:    message.Record{Username: "bob"},
		},
		{
			name:    "unicode text",
			payload: `{"username":"олена","message":"привіт"}`,
			want:    message.Record{Username: "олена", Message: "привіт"},
		},
		{
			name:    "not json",
			payload: `username=alice`,
			wantErr: true,
		},
		{
			name:    "json array",
			payload: `["alice","hi"]`,
			wantErr: true,
		},
		{
			name:    "json null",
			payload: `null`,
			wantErr: true,
		},
		{
			name:    "wrong field type",
			payload: `{"username":42}`,
			wantErr: true,
		},
		{
			name:    "truncated object",
			payload: `{"username":"ali`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			payload: ``,
			wantErr: true,
		},
		{
			name:    "invalid utf-8",
			payload: "{\"username\":\"\xff\"}",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.payload))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
