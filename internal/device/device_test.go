package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want Info
	}{
		{
			name: "chrome on windows",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			want: Info{Browser: "Chrome", OS: "Windows", DeviceClass: "desktop"},
		},
		{
			name: "safari on iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1",
			want: Info{Browser: "Safari", OS: "iOS", DeviceClass: "mobile"},
		},
		{
			name: "firefox on linux",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: Info{Browser: "Firefox", OS: "Linux", DeviceClass: "desktop"},
		},
		{
			name: "empty",
			ua:   "",
			want: Info{Browser: "Unknown", OS: "Unknown", DeviceClass: "unknown"},
		},
		{
			name: "curl",
			ua:   "curl/8.4.0",
			want: Info{Browser: "curl", OS: "Unknown", DeviceClass: "bot"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.ua))
		})
	}
}
