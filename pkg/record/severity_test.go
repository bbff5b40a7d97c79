package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		token string
		want  Level
	}{
		{"INFO", Information},
		{"WARNING", Warning},
		{"CRITICAL", Critical},
		{"ERROR", Error},
		{"DEBUG", Verbose},
		{"info", Verbose},
		{"WARN", Verbose},
		{" INFO", Verbose},
		{"INFO ", Verbose},
		{"", Verbose},
		{"ошибка", Verbose},
		{"\x00", Verbose},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.token))
		})
	}
}

func TestClassify_Total(t *testing.T) {
	valid := make(map[Level]bool)
	for _, l := range Levels() {
		valid[l] = true
	}

	inputs := []string{"", " ", "INFO", "🔥", "CRITICAL\n", "ERROR\r", "[40]", "Information"}
	for _, in := range inputs {
		require.True(t, valid[Classify(in)], "Classify(%q) returned an undefined level", in)
	}
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "verbose", Verbose.String())
	require.Equal(t, "information", Information.String())
	require.Equal(t, "critical", Critical.String())
	require.Equal(t, "level(9)", Level(9).String())
}

func TestLevel_UnmarshalText(t *testing.T) {
	var l Level
	require.NoError(t, l.UnmarshalText([]byte("Warning")))
	require.Equal(t, Warning, l)
	require.Error(t, l.UnmarshalText([]byte("fatal")))
}
