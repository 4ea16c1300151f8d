package extract

import "strings"

func page(lines ...string) string { return strings.Join(lines, "\n") }

var flatPages = []string{
	page(
		"Contract: 031L0",
		"Schedule Date: 01/06/2025",
		"Trip ID  Stop  Facility  Arrive  Depart  Miles  Hours  Class  Trip Date",
		"101  1  ORLANDO P&DC  06:00  06:30  84.5  3.5  A  01/06/2025",
		"101  2  TAMPA P&DC  08:15  08:45  84.5  3.5  A",
		"102  1  TAMPA P&DC  09:00  09:30  1,084.5  7  B",
		"Page 1 of 2",
	),
	page(
		"Contract: 031L0",
		"Trip ID  Stop  Facility  Arrive  Depart  Miles  Hours  Class  Trip Date",
		"102  2  LAKELAND  10:30  10:30  1,084.5  7  B",
		"103  1  ORLANDO P&DC  13:00  13:15  40  2  A  01/07/2025",
	),
}

var freeTextPages = []string{
	page(
		"HCR# 031L0  ORLANDO FL",
		"Supplier: ACME TRUCKING  Phone: (407) 555-0100  Email: dispatch@acme.example",
		"Estimated Annual Schedule Miles: 52,340.5",
		"Estimated Annual Schedule Hours: 2,100",
		"Schedule Date: 01/06/2025",
		"Trip ID: 1001  Class: A  Vehicle: 45FT",
		"1  32099  ORLANDO P&DC  06:00:00 ET  30 min  06:30:00 ET  01/06/2025",
		"2  33630  TAMPA P&DC  08:15:00 ET  20 min  08:35:00 ET",
		"Trip Miles: 84.5  Trip Hours: 3.5  Drive Time: 2.9",
	),
	page(
		"HCR# 031L0  ORLANDO FL",
		"Trip ID: 1002  Class: B",
		"1  nan  TAMPA P&DC  09:00  15  09:15",
		"2  34120  LAKELAND  10:00  1:15  11:15",
		"Trip Miles: 40  Trip Hours: 2.25",
		"Page 2",
	),
}

// tripRowPages is the one-trip-per-row flat layout.
var tripRowPages = []string{
	page(
		"Contract: 031L0",
		"Trip Date  Start  End  From  To  Miles  Hours  Class",
		"01/06/2025  06:00  08:15  ORLANDO P&DC  TAMPA P&DC  84.5  3.5  A",
		"01/06/2025  09:00  11:00  TAMPA P&DC  ORLANDO P&DC  84.5  2  B",
		"Page 1 of 2",
	),
	page(
		"Contract: 031L0",
		"Trip Date  Start  End  From  To  Miles  Hours  Class",
		"01/07/2025  13:00  14:00  OCALA  GAINESVILLE  40  1  A",
	),
}

// uploadPages carries vehicle, frequency and effective/expiration columns
// after the depart time.
var uploadPages = []string{
	page(
		"HCR Number: 031L0",
		"Trip ID: 2001  Class: A",
		"1  32099  ORLANDO P&DC  05:00:00 ET  30  06:30:00 ET  45FT 1234  1.0  MTWTF  01/06/2025 12/31/2025",
		"2  33630  TAMPA P&DC  08:15:00 ET  20  08:35:00 ET  45FT 1234  1.0  MTWTF  01/06/2025  12/31/2025",
		"Trip Miles: 84.5  Trip Hours: 3.5",
	),
}
