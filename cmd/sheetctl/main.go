// sheetctl runs the JSON to Excel export offline.
//
// Usage:
//
//	# Convert a request body or a bare JSON array
//	sheetctl convert records.json -o report.xlsx
//
//	# Convert the first sheet of a legacy .xls workbook
//	sheetctl convert --xls legacy.xls -o report.xlsx
//
//	# Show resolved columns and cell text
//	sheetctl preview records.json --format markdown
//
//	# Mint a bearer token for the export API
//	sheetctl token --subject nightly-report
package main

func main() {
	Execute()
}
