// Command jexlfmt formats JEXL expressions.
//
// Each expression is parsed and rendered back with canonical spacing,
// double-quoted strings and only the parentheses its grouping needs.
//
// Usage:
//
//	# Format expressions given as arguments, one result per line
//	jexlfmt '1 + (2 * 3)' 'foo  [.bar == 1]'
//
//	# Format a file of expressions, one per line
//	jexlfmt < rules.jexl
//
//	# List expressions that are not canonically formatted
//	jexlfmt --check < rules.jexl
//
//	# Use a custom grammar
//	jexlfmt --grammar grammar.yaml 'a ?? (b ?? c)'
//
//	# Re-format a file whenever it changes
//	jexlfmt watch rules.jexl
//
//	# Print the effective grammar
//	jexlfmt grammar
package main

func main() {
	Execute()
}
