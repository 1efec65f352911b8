package keyboard_test

import (
	"testing"

	"github.com/robux-town/order-bot/internal/bot/keyboard"
	"github.com/robux-town/order-bot/internal/domain"
	"github.com/robux-town/order-bot/internal/wizard"
)

func TestBuilderMethods(t *testing.T) {
	b := keyboard.NewBuilder(nil)

	markup := b.Methods()
	if markup == nil {
		t.Fatal("expected markup, got nil")
	}

	if len(markup.InlineKeyboard) != 4 {
		t.Fatalf("expected 4 method rows, got %d", len(markup.InlineKeyboard))
	}

	for _, row := range markup.InlineKeyboard {
		if len(row) != 1 {
			t.Fatalf("expected 1 button per row, got %d", len(row))
		}

		unique, code, err := keyboard.DecodeCallback(row[0].Data)
		if err != nil {
			t.Fatalf("decode %q: %v", row[0].Data, err)
		}
		if unique != keyboard.UniqueMethod {
			t.Errorf("unique = %q, want %q", unique, keyboard.UniqueMethod)
		}

		method, ok := keyboard.MethodFromCode(code)
		if !ok {
			t.Fatalf("unknown method code %q", code)
		}
		if string(method) != row[0].Text {
			t.Errorf("button text %q does not match method %q", row[0].Text, method)
		}
	}
}

func TestBuilderCoins(t *testing.T) {
	b := keyboard.NewBuilder(nil)

	markup := b.Coins()
	if len(markup.InlineKeyboard) != len(domain.Coins) {
		t.Fatalf("expected %d coin rows, got %d", len(domain.Coins), len(markup.InlineKeyboard))
	}

	for i, row := range markup.InlineKeyboard {
		_, code, err := keyboard.DecodeCallback(row[0].Data)
		if err != nil {
			t.Fatalf("decode %q: %v", row[0].Data, err)
		}

		coin, ok := keyboard.CoinFromCode(code)
		if !ok {
			t.Fatalf("unknown coin code %q", code)
		}
		if coin != domain.Coins[i] {
			t.Errorf("row %d = %q, want %q", i, coin, domain.Coins[i])
		}
	}
}

func TestBuilderFor(t *testing.T) {
	b := keyboard.NewBuilder(nil)

	if b.For(wizard.KeyboardNone) != nil {
		t.Error("expected nil markup for empty keyboard")
	}

	tests := []struct {
		kb   wizard.Keyboard
		rows int
	}{
		{wizard.KeyboardYesNo, 1},
		{wizard.KeyboardConfirm, 1},
		{wizard.KeyboardMethods, 4},
		{wizard.KeyboardCoins, 5},
	}

	for _, tt := range tests {
		markup := b.For(tt.kb)
		if markup == nil {
			t.Fatalf("For(%q) returned nil", tt.kb)
		}
		if len(markup.InlineKeyboard) != tt.rows {
			t.Errorf("For(%q) rows = %d, want %d", tt.kb, len(markup.InlineKeyboard), tt.rows)
		}
	}
}
