package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		bools   []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-x", "1"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=alt.json", "-a", "localhost"},
			allowed: []string{"--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag followed by another flag keeps no value",
			args:    []string{"-c", "-a", ":80"},
			allowed: []string{"-c", "-a"},
			want:    []string{"-c", "-a", ":80"},
		},
		{
			name:    "bool flag does not swallow positional",
			args:    []string{"-mdns", "extra", "-a", ":80"},
			allowed: []string{"-a"},
			bools:   []string{"-mdns"},
			want:    []string{"-mdns", "-a", ":80"},
		},
		{
			name:    "bool flag with explicit value",
			args:    []string{"-mdns=false"},
			bools:   []string{"-mdns"},
			want:    []string{"-mdns=false"},
		},
		{
			name:    "repeated flag preserved in order",
			args:    []string{"-c", "one.json", "-c", "two.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name: "empty args",
			args: []string{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed, tt.bools...))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "/p/short.json", ConfigFileFlag([]string{"-c", "/p/short.json"}))
	assert.Equal(t, "/p/long.json", ConfigFileFlag([]string{"-a", ":1", "-config", "/p/long.json"}))
	assert.Equal(t, "/p/2.json", ConfigFileFlag([]string{"-c", "/p/1.json", "-config=/p/2.json"}))
	assert.Empty(t, ConfigFileFlag([]string{"-x", "1"}))
}
