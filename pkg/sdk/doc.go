// Package manualrag embeds the manual retrieval core in a Go program.
//
// A Client loads a pre-embedded corpus once and answers retrieval calls
// against it: cosine ranking, top-k selection and context assembly with
// numbered source markers.
//
// # Vector API
//
//	client, _ := manualrag.New(ctx, manualrag.WithCorpusFile("data/manuals.json"))
//	res, _ := client.Retrieve(ctx, queryVector, 5)
//	fmt.Println(res.Context)
//
// # Text API
//
// With an embedder the client vectorizes questions itself. Embeddings can be
// cached in Valkey or Redis and metered against a token budget.
//
//	client, _ := manualrag.New(ctx,
//	    manualrag.WithCorpusFile("data/manuals.json"),
//	    manualrag.WithEmbedder(myEmbedder),
//	    manualrag.WithValkeyCache("localhost:6379", ""),
//	    manualrag.WithTokenBudget(100_000, 0),
//	)
//	res, _ := client.RetrieveText(ctx, "How do I level the bed?", 3)
package manualrag
