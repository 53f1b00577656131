package services

// Notifier pushes live tournament updates to subscribed clients.
// Implemented by brackets.Hub; a nil Notifier disables notifications.
type Notifier interface {
	NotifyTournament(tournamentID int, event string, payload interface{})
}
