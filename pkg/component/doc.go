// Package component models component instances as an arena of nodes
// addressed by Handle. Parent links are handles, not pointers: a parent owns
// its child list, a child only remembers which handle its parent has.
//
// The error subsystem reads two things from a Tree: the parent chain
// (Parent) and the ordered capture hooks of each ancestor (CaptureHooks).
//
//	tree := component.NewTree()
//	root, _ := tree.Mount(component.None, component.Options{
//	    Name: "App",
//	    ErrorCaptured: []component.CaptureHook{
//	        func(self component.Handle, err error, origin component.Handle, info string) (component.Verdict, error) {
//	            return component.Stop, nil
//	        },
//	    },
//	})
//	child, _ := tree.Mount(root, component.Options{Name: "Counter"})
package component
