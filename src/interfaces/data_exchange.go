package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for pushing watchlist views to external listeners.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Notify signals that the watchlist changed and every listener needs a fresh view.
	Notify()

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
