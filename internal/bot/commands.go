package bot

import "github.com/robux-town/order-bot/internal/bot/keyboard"

// Command constants for Telegram bot commands.
const (
	CommandStart  = "/start"
	CommandPanel  = "/panel"
	CommandCancel = "/cancel"
	CommandDone   = "/done"
	CommandOrders = "/orders"
	CommandHelp   = "/help"
)

// Callback prefix constants for inline button interactions. Payload-carrying
// buttons append their data after the separator.
const (
	CallbackOrderStart    = keyboard.UniqueOrderStart
	CallbackWizardPrefix  = keyboard.UniqueWizard + keyboard.CallbackDataSeparator
	CallbackConfirmPrefix = keyboard.UniqueConfirm + keyboard.CallbackDataSeparator
	CallbackMethodPrefix  = keyboard.UniqueMethod + keyboard.CallbackDataSeparator
	CallbackCoinPrefix    = keyboard.UniqueCoin + keyboard.CallbackDataSeparator
)
