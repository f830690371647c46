// Package errors provides structured, actionable error messages for the
// asset injector.
//
// Every error carries a stable code, a category and, where it applies, the
// module and source file that caused it:
//
//	err := errors.New("E131").
//	    WithModule("app").
//	    WithLocation("public/css/site.less", 12, 3).
//	    WithSuggestion("Check the @import paths in site.less")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E131: Style source compilation failed
//	//
//	//   module app
//	//   public/css/site.less:12:3
//	//
//	//     11 │ .header {
//	//   → 12 │   color: @missing;
//	//        │   ^
//	//     13 │ }
//	//
//	//   Hint: Check the @import paths in site.less
//
// # Categories
//
// Categories mirror the failure kinds of the pipeline:
//   - config: unknown module or invalid configuration
//   - resolution: a module root is missing or unreadable
//   - transform: a source file failed to read or compile
//   - persistence: a build artifact could not be written
//   - cli: command line and front-end failures
//
// The exported sentinels (ErrConfiguration, ErrResolution, ...) match any
// error of their category with errors.Is.
package errors
