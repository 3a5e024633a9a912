// Package draftzero provides an in-process Go client for the Draft Zero
// collaborative writing backend: documents with versions and notes, table-driven
// role permissions, idea-linkage computation and writing-session tracking.
//
// The client talks to Redis directly and wires the same services the HTTP API
// uses, so embedding it in a worker or CLI gives full engine semantics without
// a running server:
//
//	client, _ := draftzero.New(ctx,
//	    draftzero.WithRedis("localhost:6379", ""),
//	    draftzero.WithEmbedder(myEmbedder),
//	    draftzero.WithExplainer(myExplainer),
//	)
//	defer client.Close()
//
//	docs := client.Documents("alice")
//	doc, _ := docs.Create(ctx, "Novel draft")
//	_ = docs.Share(ctx, doc.ID, "bob", []draftzero.TypedRole{
//	    {Role: "EDITOR", Scope: "document"},
//	})
//
//	linkage := client.Linkage("alice")
//	result, _ := linkage.Compute(ctx, doc.ID,
//	    []draftzero.NodeInput{{NodeID: "n1", Text: "the hero returns home"}},
//	    []string{"n1"},
//	)
//
// All operations act on behalf of the user passed to the service constructor;
// permission checks apply exactly as over HTTP.
package draftzero
