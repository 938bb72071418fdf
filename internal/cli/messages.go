package cli

// Console prompts and messages.
const (
	mainMenu      = "[V]iew by  [C]reate  [G]o to  [E]vent list  [D]elete  [Q]uit"
	viewMenu      = "[D]ay view or [M]view ?"
	dayNavMenu    = "[P]revious or [N]ext or [G]o back to the main menu ?"
	monthNavMenu  = "[P]revious or [N]ext or [G]o back to main menu ?"
	deleteMenu    = "[S]elected  [A]ll   [R]ecurring"
	invalidOption = "Invalid option. Please choose from the menu."

	promptName      = "Name: "
	promptDate      = "Date (MM/DD/YYYY): "
	promptStart     = "Start time (HH:mm): "
	promptEnd       = "End time (HH:mm): "
	promptDelDate   = "Enter the date (MM/DD/YYYY): "
	promptDelName   = "Enter the name of the event to delete: "
	promptRecurName = "Enter recurring event name: "

	msgCreated       = "Event created."
	msgDeleted       = "Event deleted."
	msgConflict      = "Conflict with existing event."
	msgEmptyName     = "Event name must not be empty."
	msgBadName       = "Event name must be a single line and must not start with #."
	msgBadDate       = "Invalid date format. Please use MM/DD/YYYY format."
	msgBadTime       = "Invalid time format. Please use HH:mm format."
	msgEndAfterStart = "End time must be after start time."
	msgNoSuchEvent   = "Error: No event found with the specified name on this date."
	msgNoRecurring   = "Error: No matching recurring event found."
	msgGoodBye       = "Good Bye"

	headerOneTime   = "ONE TIME EVENTS"
	headerRecurring = "RECURRING EVENTS"
)
