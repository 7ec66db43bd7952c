package cache_test

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/proteomap/pkg/cache"
)

func ExampleFileCache() {
	dir, err := os.MkdirTemp("", "proteomap-example")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer os.RemoveAll(dir)

	c, err := cache.NewFileCache(dir)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	ctx := context.Background()
	key := cache.NewDefaultKeyer().LayoutKey(cache.Hash([]byte("rows")), cache.LayoutKeyOpts{Seed: 1})

	if err := c.Set(ctx, key, []byte(`{"type":"FeatureCollection"}`), time.Hour); err != nil {
		fmt.Println("Error:", err)
		return
	}
	data, ok, _ := c.Get(ctx, key)
	fmt.Println("Found:", ok)
	fmt.Println(string(data))

	_, ok, _ = c.Get(ctx, "missing")
	fmt.Println("Found:", ok)
	// Output:
	// Found: true
	// {"type":"FeatureCollection"}
	// Found: false
}
