package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDirFromArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"list"}, ""},
		{[]string{"--config", "/tmp/cfg", "list"}, "/tmp/cfg"},
		{[]string{"list", "--config=/tmp/cfg"}, "/tmp/cfg"},
		{[]string{"list", "--config"}, ""},
		{[]string{"--", "--config", "/tmp/cfg"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, configDirFromArgs(tt.args), "args %v", tt.args)
	}
}
