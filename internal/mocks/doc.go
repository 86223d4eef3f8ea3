// Package mocks provides shared test doubles for the store and service interfaces.
//
// Two styles live here. Testify mocks (TestifyMock*) are for tests that assert
// exact calls; function-field mocks (Mock*) record their calls and fall back to
// simple in-memory behavior when no function is set:
//
//	source := &mocks.MockCardSource{
//	    ApplyGradeFn: func(ctx context.Context, id string, q domain.Quality, now time.Time) (domain.Card, error) {
//	        return domain.Card{}, errors.New("store down")
//	    },
//	}
package mocks
