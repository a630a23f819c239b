// Package mocks provides handwritten mock implementations of the interfaces
// used throughout the application.
//
// Each mock has a function field per method; when the field is nil the mock
// falls back to a default value or, for store mocks, to a wrapped Base
// implementation:
//
//	gen := &mocks.MockTextGenerator{
//	    GenerateFn: func(ctx context.Context, prompt string) (string, error) {
//	        return "¡Bien hecho!", nil
//	    },
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Assert interface compliance with a blank var declaration
package mocks
