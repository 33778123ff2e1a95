package slack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQOTD(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    CommandType
		wantErr bool
	}{
		{name: "Should default to help on empty text", text: "", want: CmdHelp},
		{name: "Should parse status", text: "status", want: CmdStatus},
		{name: "Should parse post", text: " post ", want: CmdPost},
		{name: "Should parse help", text: "help", want: CmdHelp},
		{name: "Should reject unknown command", text: "frobnicate", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseQOTD(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Type)
		})
	}
}

func TestParseLevels(t *testing.T) {
	cmd, err := ParseLevels("")
	require.NoError(t, err)
	assert.Equal(t, CmdXP, cmd.Type)

	cmd, err = ParseLevels("add <@U123456789> 50")
	require.NoError(t, err)
	assert.Equal(t, CmdAddXP, cmd.Type)
	assert.Equal(t, []string{"<@U123456789>", "50"}, cmd.Args)

	cmd, err = ParseLevels("leaderboard")
	require.NoError(t, err)
	assert.Equal(t, CmdTop, cmd.Type)

	_, err = ParseLevels("bogus")
	assert.Error(t, err)
}

func TestParseUserMention(t *testing.T) {
	id, err := ParseUserMention("<@U123456789>")
	require.NoError(t, err)
	assert.Equal(t, "U123456789", id)

	id, err = ParseUserMention("<@U123456789|ada>")
	require.NoError(t, err)
	assert.Equal(t, "U123456789", id)

	_, err = ParseUserMention("U123456789")
	assert.Error(t, err)

	_, err = ParseUserMention("<@>")
	assert.Error(t, err)
}
