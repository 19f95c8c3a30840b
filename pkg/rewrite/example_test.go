package rewrite_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/walteh/guardfix/pkg/catalog"
	"github.com/walteh/guardfix/pkg/inspect"
	"github.com/walteh/guardfix/pkg/rewrite"
)

func ExampleEngine_Rewrite() {
	// Create an engine for the default setState/mounted rules
	engine := rewrite.New(catalog.Default(), inspect.New(inspect.DefaultWindow))

	// Some Dart with an unguarded setState after an await
	content := strings.NewReader(`  Future<void> load() async {
    await fetch();
    setState(() => _loading = false);
  }
`)

	result, err := engine.Rewrite(context.Background(), content)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Print(string(result.ModifiedContent))
	fmt.Printf("Changes: %d\n", result.ModificationCount)

	// Output:
	//   Future<void> load() async {
	//     await fetch();
	//     if (mounted) setState(() => _loading = false);
	//   }
	// Changes: 1
}

func ExampleEngine_Apply() {
	c, err := catalog.New(catalog.Options{FailureType: "StateError"})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	engine := rewrite.New(c, inspect.New(inspect.DefaultWindow))

	for _, rule := range c.Rules() {
		if rule.Name != catalog.RuleUnwrapOptional {
			continue
		}
		out, outcome := engine.Apply(rule, "    final user = snapshot.data()!;\n")
		fmt.Print(out)
		fmt.Printf("Changes: %d\n", outcome.Count)
	}

	// Output:
	//     final user = snapshot.data();
	//     if (user == null) {
	//       throw StateError('failed to retrieve data');
	//     }
	// Changes: 1
}
