package users

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "first and last", user: User{FirstName: "Alice", LastName: "Smith"}, want: "Alice Smith"},
		{name: "first only", user: User{FirstName: "Alice"}, want: "Alice"},
		{name: "last only", user: User{LastName: "Smith"}, want: "Smith"},
		{name: "username fallback", user: User{Username: "asmith"}, want: "asmith"},
		{name: "all empty", user: User{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
