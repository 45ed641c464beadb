package support

// User-facing message texts for the ticket workflow.
const (
	msgEntry = "Need help from the team? Start a support ticket below and we'll get back to you."

	msgCategoryPrompt = "Please select the category for this support request."
	msgReasonPrompt   = "Please select the reason for closing this request."
	msgTimedOut       = "Timed Out, please try again..."

	msgTicketNotFound = "**ERROR** `Ticket not found!`"
	msgNoAccess       = "**ERROR** `You do not have permission to manage tickets.`"
	msgChannelDenied  = "**ERROR** `Unable to create the support channel, missing permissions.`"
	msgMissingFields  = "**ERROR** `Subject and description are both required.`"

	msgSubmissionSuccess = "Your ticket has been received! The team will reach out as soon as possible."
	msgSubmissionNoDM    = "Your ticket has been received! We could not DM you a copy, so here it is:"

	msgDMReceived = "### Ticket Received!"

	msgTempChannelDM   = "A support channel has been opened for your ticket #`%d`: <#%s>"
	msgTempChannelNoDM = "<@%s> A support channel has been opened for your ticket #`%d`."

	msgTicketClosedDM = "Your ticket #`%d` has been closed.\n**Reason**\n```%s```"
)
