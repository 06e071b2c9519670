package authstate

import (
	"github.com/rs/zerolog"
)

// Inspector logs every action and the state it produced at debug level.
func Inspector(logger zerolog.Logger) Middleware {
	return func(next Dispatch) Dispatch {
		return func(a Action) State {
			st := next(a)
			logger.Debug().
				Str("action", string(a.Type)).
				Bool("authenticated", st.IsAuthenticated).
				Str("user", st.UserName).
				Interface("settings", st.UserSettings).
				Msg("auth state updated")
			return st
		}
	}
}

// DevInspector returns Inspector in the DEV environment and nil otherwise;
// WithMiddleware skips nil middleware.
func DevInspector(isDev bool, logger zerolog.Logger) Middleware {
	if !isDev {
		return nil
	}
	return Inspector(logger)
}
