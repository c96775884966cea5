package telegram

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"/status", CommandStatus, true},
		{"/STATUS", CommandStatus, true},
		{"  /autoreport  ", CommandAutoReport, true},
		{"/status@NodeWatchBot", CommandStatus, true},
		{"/status@nodewatchbot please", CommandStatus, true},
		{"/status@OtherBot", "", false},
		{"/help", CommandHelp, true},
		{"/start", CommandStart, true},
		{"/unknown", "", false},
		{"hello there", "", false},
		{"", "", false},
		{"@NodeWatchBot /status", CommandStatus, true},
		{"hey @nodewatchbot can you /autoreport", CommandAutoReport, true},
		{"@NodeWatchBot /start and /status", CommandStart, true},
		{"@NodeWatchBot how are you", "", false},
		{"/status is what @SomeoneElse asked for", CommandStatus, true},
		{"please /status", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseCommand(tt.text, "NodeWatchBot")
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseCommand(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}
