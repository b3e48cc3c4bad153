package memory

import "intentdash/internal/core"

// DefaultCategories is the 16-category sample shown when the live feed is down.
func DefaultCategories() []core.CategoryRecord {
	return []core.CategoryRecord{
		core.NewCategoryRecord("New Service Setup", 54),
		core.NewCategoryRecord("Billing Inquiry", 182),
		core.NewCategoryRecord("Service Modification", 162),
		core.NewCategoryRecord("Contract Inquiries", 70),
		core.NewCategoryRecord("Promotional Inquiry", 51),
		core.NewCategoryRecord("Technical Support", 146),
		core.NewCategoryRecord("Number Portability", 67),
		core.NewCategoryRecord("Technician Setup", 62),
		core.NewCategoryRecord("New Service Inquiry", 65),
		core.NewCategoryRecord("Coverage Inquiry", 15),
		core.NewCategoryRecord("Account Access Issue", 67),
		core.NewCategoryRecord("Insurance Inquiry", 41),
		core.NewCategoryRecord("Lost/Stolen Device", 60),
		core.NewCategoryRecord("Billing Dispute", 129),
		core.NewCategoryRecord("International Services", 60),
		core.NewCategoryRecord("Service Disruption", 58),
	}
}

// DefaultIntents is the raw intent sample, header row included as the feed sends it.
func DefaultIntents() []core.IntentRecord {
	return []core.IntentRecord{
		{Intent: "Original Text", Category: " Category"},
		{Intent: "Initiate the provisioning of a brand-new phone or web-based connection", Category: " New Service Setup"},
		{Intent: "Assess your monthly fee", Category: " Billing Inquiry"},
		{Intent: "Solicit a temporary service stoppage", Category: " Service Modification"},
		{Intent: "Investigate early termination charges", Category: " Contract Inquiries"},
		{Intent: "Review your monthly rate", Category: " Billing Inquiry"},
		{Intent: "Request a copy of former charges", Category: " Billing Inquiry"},
		{Intent: "Acquire a facsimile of old receipts", Category: " Billing Inquiry"},
		{Intent: "Demand a duplicate of former charges", Category: " Billing Inquiry"},
		{Intent: "Review your monthly expense", Category: " Billing Inquiry"},
		{Intent: "Upgrade or change your existing setup", Category: " Service Modification"},
		{Intent: "Gather intel on available promotional offerings", Category: " Promotional Inquiry"},
		{Intent: "Crack a technical code", Category: " Technical Support"},
		{Intent: "Solicit a brief service cessation", Category: " Service Modification"},
		{Intent: "Inquire about the possibility of porting a phone number", Category: " Number Portability"},
		{Intent: "Delve into a technical issue", Category: " Technical Support"},
		{Intent: "Secure a technician for installation", Category: " Technician Setup"},
		{Intent: "Discover the insights on data consumption and penalty fees", Category: " Billing Inquiry"},
	}
}
