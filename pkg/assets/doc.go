// Package assets resolves, bundles and renders front-end asset modules.
//
// A module is a named directory (or single file) of JavaScript, CSS or LESS
// sources under the web root. In development the injector renders one tag
// per file:
//
//	<script type="text/javascript" src="/js/app/core.js"></script>
//	<script type="text/javascript" src="/js/app/widgets/grid.js"></script>
//
// In build mode it concatenates the files (compiling LESS, minifying
// scripts on request) into deploy/<module>.build.<ext> and renders a single
// tag pointing at that artifact:
//
//	<script type="text/javascript" src="/deploy/app.build.js?version=7"></script>
//
// Artifacts are reused for as long as they exist on disk. Clearing the
// deploy directory is the only invalidation.
//
// # Usage
//
//	inj, err := assets.New(assets.Options{
//	    WebFS:     os.DirFS("public"),
//	    WebDir:    "public",
//	    DeployDir: "public/deploy",
//	    Modules:   map[string]string{"app": "js/app"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	markup, err := inj.Inject(ctx, "app", assets.Request{Build: true, Version: 7})
//
// # File Order
//
// Files directly in the module root come first, then every nested directory
// in ascending path order; files within a directory are sorted by name.
// Concatenation order is load order, so name files accordingly.
package assets
