package weburl

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://example.com", want: "https://example.com/"},
		{in: "  HTTP://Example.COM/a/../b  ", want: "http://example.com/b"},
		{in: "https://example.com/search?q=a b", want: "https://example.com/search?q=a%20b"},
		{in: "", wantErr: true},
		{in: "not a url", wantErr: true},
		{in: "mailto:someone@example.com", wantErr: true},
		{in: "ftp://example.com/file", wantErr: true},
		{in: "/relative/path", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Normalize(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	got, err := Resolve("https://example.com/blog/post", "../about")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/about", got)

	got, err = Resolve("https://example.com/blog/", "https://other.example/x")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/x", got)

	_, err = Resolve("https://example.com/", "javascript:void(0)")
	assert.Error(t, err)
}

func TestParsePublic(t *testing.T) {
	blocked := []string{
		"http://169.254.169.254/latest/meta-data/iam/",
		"http://127.0.0.1:8080/",
		"http://localhost/admin",
		"http://api.localhost/",
		"http://10.1.2.3/",
		"http://172.20.0.5/",
		"http://192.168.1.1/",
		"http://100.64.0.1/",
		"http://0.0.0.0/",
		"http://[::1]/",
		"http://[fd00::1]/",
		"http://[fe80::1]/",
		"http://2852039166/",
		"http://0x7f.1/",
	}
	for _, raw := range blocked {
		_, err := ParsePublic(raw)
		assert.ErrorIs(t, err, ErrPrivateHost, raw)
	}

	for _, raw := range []string{"https://example.com/", "http://8.8.8.8/", "http://172.32.0.1/"} {
		u, err := ParsePublic(raw)
		require.NoError(t, err, raw)
		assert.NotNil(t, u)
	}

	_, err := ParsePublic("ftp://example.com")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, IsPrivateIP(net.ParseIP("169.254.169.254")))
	assert.True(t, IsPrivateIP(net.ParseIP("::ffff:127.0.0.1")))
	assert.True(t, IsPrivateIP(nil))
	assert.False(t, IsPrivateIP(net.ParseIP("93.184.216.34")))
	assert.False(t, IsPrivateIP(net.ParseIP("2606:2800:220:1:248:1893:25c8:1946")))
}
