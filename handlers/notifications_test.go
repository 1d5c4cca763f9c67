package handlers

import (
	"reflect"
	"testing"
)

func TestVisibleNotificationRoles(t *testing.T) {
	tests := []struct {
		role string
		want []string
	}{
		{"admin", []string{"admin", "faculty", "all"}},
		{"faculty", []string{"faculty", "all"}},
		{"user", []string{"user", "all"}},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			if got := visibleNotificationRoles(tt.role); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("visibleNotificationRoles(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}
