package scanning

import (
	"fmt"
	"strings"
)

// receiptScanPrompt builds the instruction shared by all LLM providers.
func receiptScanPrompt() string {
	return fmt.Sprintf(`You are analyzing a photo of a purchase receipt. Read all text in the image and extract:

1. **Vendor**: the store or merchant name, usually the largest text at the top.
2. **Amount**: the final total paid ("TOTAL", "Amount Due", "Grand Total"). Numeric value only, e.g. 42.75 for $42.75.
3. **Tax**: the tax portion of the total. Numeric value only, 0 if no tax line is printed.
4. **Currency**: the ISO 4217 code of the amounts (USD, EUR, GBP, ...).
5. **Category**: one of %s.
6. **Date**: the transaction date in YYYY-MM-DD format.

Return ONLY valid JSON in this exact format:
{
  "vendor": "Store Name",
  "amount": 0.00,
  "tax": 0.00,
  "currency": "USD",
  "category": "Other",
  "date": "YYYY-MM-DD"
}

Important:
- amount and tax must be numbers, not strings
- If the image is not a receipt or a field is unreadable, use null for that field rather than guessing
- Do not include any text before or after the JSON
- Do not use markdown code blocks`, strings.Join(SuggestedCategories, ", "))
}
