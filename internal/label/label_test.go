package label

import "testing"

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		marker string
		want   Label
	}{
		{name: "exact marker", raw: "<chat>", want: Chat},
		{name: "marker inside sentence", raw: "Answer: <chat> because bubbles", want: Chat},
		{name: "non-chat marker", raw: "<non-chat>", want: NotChat},
		{name: "upper case is not a match", raw: "<CHAT>", want: NotChat},
		{name: "empty response", raw: "", want: NotChat},
		{name: "custom marker", raw: "verdict=yes", marker: "=yes", want: Chat},
		{name: "custom marker absent", raw: "<chat>", marker: "[chat]", want: NotChat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromResponse(tc.raw, tc.marker); got != tc.want {
				t.Fatalf("FromResponse(%q, %q) = %v, want %v", tc.raw, tc.marker, got, tc.want)
			}
		})
	}
}

func TestLabelForms(t *testing.T) {
	if Chat.String() != "chat" || NotChat.String() != "not_chat" {
		t.Fatalf("unexpected string forms %q %q", Chat, NotChat)
	}
	if Chat.Constant() != "CHAT" || NotChat.Constant() != "NOT_CHAT" {
		t.Fatalf("unexpected constant forms %q %q", Chat.Constant(), NotChat.Constant())
	}
	if !Chat.IsChat() || NotChat.IsChat() {
		t.Fatal("unexpected IsChat results")
	}
	if Chat.Message() == NotChat.Message() {
		t.Fatal("expected distinct messages")
	}
}
