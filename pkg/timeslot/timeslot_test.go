package timeslot

import (
	"reflect"
	"sort"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unpadded hour", "8:00 AM", "08:00 AM"},
		{"already canonical", "08:00 AM", "08:00 AM"},
		{"lower case marker", "9:30 pm", "09:30 PM"},
		{"mixed case marker", "11:15 Am", "11:15 AM"},
		{"no space before marker", "7:45PM", "07:45 PM"},
		{"surrounding whitespace", "  10:00 AM ", "10:00 AM"},
		{"two digit hour", "12:00 PM", "12:00 PM"},
		{"24 hour clock passes through", "14:00", "14:00"},
		{"garbage passes through", "morning", "morning"},
		{"hour out of range passes through", "13:00 PM", "13:00 PM"},
		{"minute out of range passes through", "8:75 AM", "8:75 AM"},
		{"hour zero passes through", "0:30 AM", "0:30 AM"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"8:00 AM", "08:00 am", "1:05pm", "12:59 PM", "not a slot", "25:00 AM", " 3:00 PM"}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestLessOrdersByTimeOfDay(t *testing.T) {
	slots := []string{"01:00 PM", "zzz", "08:00 AM", "12:00 PM", "12:30 AM", "aaa", "11:00 AM"}
	sort.Slice(slots, func(i, j int) bool { return Less(slots[i], slots[j]) })

	want := []string{"12:30 AM", "08:00 AM", "11:00 AM", "12:00 PM", "01:00 PM", "aaa", "zzz"}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("sorted = %v, want %v", slots, want)
	}
}

func TestIsCanonical(t *testing.T) {
	if !IsCanonical("8:00 AM") {
		t.Error("IsCanonical(8:00 AM) = false")
	}
	if IsCanonical("8 AM") {
		t.Error("IsCanonical(8 AM) = true")
	}
}
