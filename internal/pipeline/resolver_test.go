package pipeline

import (
	"reflect"
	"testing"
)

func TestResolveMailboxes(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		explicit  []string
		want      []string
	}{
		{
			name:      "no explicit list defaults to principal",
			principal: "me@example.com",
			explicit:  nil,
			want:      []string{"me@example.com"},
		},
		{
			name:      "explicit list wins over principal",
			principal: "me@example.com",
			explicit:  []string{"a@example.com", "b@example.com"},
			want:      []string{"a@example.com", "b@example.com"},
		},
		{
			name:      "explicit order is preserved",
			principal: "me@example.com",
			explicit:  []string{"c@example.com", "a@example.com", "b@example.com"},
			want:      []string{"c@example.com", "a@example.com", "b@example.com"},
		},
		{
			name:      "empty explicit list yields empty run",
			principal: "me@example.com",
			explicit:  []string{},
			want:      []string{},
		},
		{
			name:      "no list and no principal",
			principal: "",
			explicit:  nil,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveMailboxes(tt.principal, tt.explicit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveMailboxes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveMailboxesCopiesInput(t *testing.T) {
	explicit := []string{"a@example.com", "b@example.com"}
	got := ResolveMailboxes("me@example.com", explicit)
	got[0] = "mutated@example.com"
	if explicit[0] != "a@example.com" {
		t.Error("ResolveMailboxes() returned a slice aliasing its input")
	}
}
