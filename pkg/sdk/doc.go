// Package questsearch embeds the questsearch keyword index in a Go program.
//
// The client talks to the same stores as the service: Redis with the search
// and JSON modules, or an embedded bleve or SQLite index.
//
//	client, _ := questsearch.New(ctx, questsearch.WithSQLite("./questions.db"))
//	defer client.Close()
//
//	_ = client.EnsureIndex(ctx)
//	report, _ := client.IngestFile(ctx, "questions.json")
//
//	page, _ := client.Search(ctx, questsearch.SearchRequest{
//	    Query:    "capital",
//	    Type:     "MCQ",
//	    PageSize: 20,
//	})
//	for _, q := range page {
//	    fmt.Println(q.ID, q.Title)
//	}
package questsearch
