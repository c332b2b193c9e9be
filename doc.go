// Package vuet is a path-addressed state store for application modules.
//
// Applications declare a tree of modules. Namespace nodes group children and
// *Leaf nodes carry a default-data factory plus an optional fetch function.
// Binding an instance to a Host with Init walks the tree, registers every leaf
// under its joined path (default separator "/") and resets its state.
//
//	v := vuet.New(vuet.WithModules(vuet.Namespace{
//		"user": &vuet.Leaf{
//			Data:  vuet.StaticData(vuet.State{"name": ""}),
//			Fetch: loadUser,
//		},
//	}))
//	if err := v.Init(ctx, vuet.NopHost{}); err != nil {
//		return err
//	}
//	state, err := v.Fetch(ctx, "user", map[string]any{"id": 42})
//
// Store writes follow a fixed policy: the first write to a path stores the
// value as given, later writes merge shallowly field by field.
//
// Fetch runs before hooks, the module fetch function and after hooks in that
// order. Any hook may return ShortCircuit to stop its chain; the fetch then
// resolves with the override or the pre-fetch state, and a failed fetch is
// reported as a success. Rule hooks built with BeforeRule and AfterRule
// express the same decisions as expr, CEL or JS expressions.
package vuet
