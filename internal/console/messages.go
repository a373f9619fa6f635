package console

// Operator-facing texts. Templates ending in a newline are printed with an
// extra line break, leaving a blank line before the next prompt.
const (
	prompt = "HAF> "

	msgInvalidCommand    = "\"%s\" is not a valid command!\nUse \"help\" for more information.\n"
	msgInvalidSubcommand = "Subcommand \"%s\" is not valid for \"%s\" command.\n"
	msgTooManyArguments  = "Too many arguments were given to \"%[1]s\" command!\nUse \"help %[1]s\" for more information.\n"
	msgTooFewArguments   = "Missing arguments to \"%[1]s\" command!\nUse \"help %[1]s\" for more information.\n"

	msgHelpNoArgs = "For specific command information use: \"help [command_name]\"\n\nCommands:\n%s\n"
	msgHelpArg    = "\"%s\" command:\n\t%s\n\nSubcommands:\n%s\n\nUsage:\n%s\n"
	msgNoSubs     = "\tThis command does not accept any subcommands."

	msgError01 = "- ERROR 01: 'Invalid Ticket Type', check your call information.\n"
	msgError02 = "- ERROR 02: 'Invalid Solution ID', check your optional call parameters.\n"
	msgError03 = "- ERROR 03: 'No Previous logs registered', there is no log to import data from.\n"
	msgError04 = "- ERROR 04: 'Retries Exhausted', %s.\n"

	msgDone        = "Done. Use \"details\" for more details.\n"
	msgDetails     = "Ticket Details:"
	msgClosing     = "- Closing HAF..."
	msgWelcome     = "- Use \"help\" for command information.\n"
	msgTicketStub  = "- \"ticket\" command is under development.\n"
	msgNoPending   = "- There is no pending call, use \"call new\" first.\n"
	msgBusy        = "- A ticket is already being processed, wait for it to finish.\n"
	msgInvalidCall = "- Invalid call information:"
	msgCallSaved   = "- Call saved, use \"call register\" to open the ticket.\n"
	msgRunningGUI  = "Running GUI!"
	msgUnexpected  = "- ERROR: %v\n"
)
