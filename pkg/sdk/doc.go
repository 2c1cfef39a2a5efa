// Package shelfdex embeds the shelfdex book index in a Go program. It talks
// to Redis (Query Engine + JSON) directly, without the HTTP service.
//
//	client, _ := shelfdex.New(ctx,
//	    shelfdex.WithRedis("localhost:6379", ""),
//	    shelfdex.WithVectorDimensions(1536),
//	    shelfdex.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small"),
//	)
//	defer client.Close()
//
//	res, _ := client.Books().Create(ctx, "42", shelfdex.Book{Title: "Dune"})
//	if res.EmbeddingFailure != nil {
//	    // stored, but not reachable by vector search
//	}
//	hits, _ := client.Search().KNNText(ctx, "desert planet politics", 5)
//
// Errors match the exported sentinels through errors.Is.
package shelfdex
