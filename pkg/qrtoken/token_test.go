package qrtoken

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.UnixMilli(1717000000123)
	tok := New("C1", "Q1", now)

	scanURL, err := tok.ScanURL("https://attend.example.com/")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(scanURL, "https://attend.example.com/scan?data="))

	data, forceNew, err := ParseScanURL(scanURL)
	require.NoError(t, err)
	assert.False(t, forceNew)

	decoded, err := DecodeValid(data)
	require.NoError(t, err)
	assert.Equal(t, "C1", decoded.CompanyID)
	assert.Equal(t, "Q1", decoded.QRID)
	assert.Equal(t, int64(1717000000123), decoded.Timestamp)
	assert.Equal(t, tok.Nonce, decoded.Nonce)
}

func TestEncodeProducesFreshNonce(t *testing.T) {
	a, err := Encode("http://localhost:3000", "C1", "Q1")
	require.NoError(t, err)
	b, err := Encode("http://localhost:3000", "C1", "Q1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewUsesRandomUUIDNonce(t *testing.T) {
	now := time.Now()
	a := New("C1", "Q1", now)
	b := New("C1", "Q1", now)

	parsed, err := uuid.Parse(a.Nonce)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, a.Nonce, b.Nonce)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrMalformedToken},
		{name: "not json", raw: "hello", wantErr: ErrMalformedToken},
		{name: "json array", raw: `["C1","Q1"]`, wantErr: ErrMalformedToken},
		{name: "truncated", raw: `{"companyId":"C1"`, wantErr: ErrMalformedToken},
		{name: "wrong type", raw: `{"companyId":1,"qrId":"Q1"}`, wantErr: ErrMalformedToken},
		{name: "missing qrId", raw: `{"companyId":"C1","timestamp":1}`, wantErr: ErrIncompleteToken},
		{name: "missing companyId", raw: `{"qrId":"Q1"}`, wantErr: ErrIncompleteToken},
		{name: "blank companyId", raw: `{"companyId":"  ","qrId":"Q1"}`, wantErr: ErrIncompleteToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeValid(tt.raw)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseScanURLForceNew(t *testing.T) {
	raw := "http://localhost:3000/scan?data=" + url.QueryEscape(`{"companyId":"C1","qrId":"Q1"}`) + "&forceNew=true"
	data, forceNew, err := ParseScanURL(raw)
	require.NoError(t, err)
	assert.True(t, forceNew)
	assert.Equal(t, `{"companyId":"C1","qrId":"Q1"}`, data)
}

func TestRenderPNG(t *testing.T) {
	png, err := RenderPNG("http://localhost:3000/scan?data=x", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	dataURL, err := RenderDataURL("hello", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
}
