// Package i18n holds the localized reply fragments sent back over WhatsApp.
// Templates use {name} placeholders so word order can differ per language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Supported reply languages. Hindi is the catalog language and the default
// for shopkeepers whose detected language has no catalog of its own.
const (
	LangEnglish = "en"
	LangHindi   = "hi"
)

var supported = []language.Tag{
	language.Hindi, // default
	language.English,
}

var matcher = language.NewMatcher(supported)

// aliases cover names Whisper returns instead of ISO codes, plus the
// deliberate ur->hi mapping (Urdu speakers are served the Hindi catalog).
var aliases = map[string]string{
	"english": "en",
	"hindi":   "hi",
	"urdu":    "hi",
	"ur":      "hi",
}

// Normalize maps a detected language code or name onto a supported reply
// language. Unknown inputs fall back to Hindi.
func Normalize(detected string) string {
	d := strings.ToLower(strings.TrimSpace(detected))
	if alias, ok := aliases[d]; ok {
		d = alias
	}
	tag, err := language.Parse(d)
	if err != nil {
		return LangHindi
	}
	matched, _, conf := matcher.Match(tag)
	if conf == language.No {
		return LangHindi
	}
	base, _ := matched.Base()
	return base.String()
}

// Format substitutes {key} placeholders in a template.
func Format(template string, args map[string]string) string {
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// T looks up a reply template for the given language, falling back to Hindi
// and then English when a key is missing, and applies the args.
func T(lang, key string, args map[string]string) string {
	if tbl, ok := messages[lang]; ok {
		if tpl, ok := tbl[key]; ok {
			return Format(tpl, args)
		}
	}
	if tpl, ok := messages[LangHindi][key]; ok {
		return Format(tpl, args)
	}
	return Format(messages[LangEnglish][key], args)
}

var messages = map[string]map[string]string{
	LangEnglish: {
		"sale_success":                "✅ Sale of ₹{amount} recorded for:\n{item_details}",
		"expense_success":             "✅ Expense of ₹{amount} ({item}) recorded.",
		"expense_success_no_item":     "✅ Expense of ₹{amount} recorded.",
		"balance_inquiry":             "📊 Your current digital khata balance is ₹{balance}.\n\nRecent Transactions:\n{transactions_summary}",
		"earnings_summary":            "📈 Today's total sales: ₹{total_sales}.\n\nToday's transactions:\n{sales_details}",
		"extract_fail":                "Could not extract structured data from your message. Please be more specific (e.g., 'Sold 1kg sugar for 50 rupees').",
		"transcribe_fail":             "Could not understand your voice note. The audio quality might be poor or not in a supported language.",
		"download_fail":               "Failed to download your voice note: {error_msg}. Please try again.",
		"file_error":                  "There was an issue with the media file: {error_msg}. Please try sending it again.",
		"unexpected_error":            "An unexpected error occurred while processing your message. Please try again.",
		"unsupported_media":           "Unsupported media type: {media_type}. Please send a voice note or an image.",
		"no_transactions_found":       "No recent transactions found.",
		"no_sales_found_today":        "No sales found today.",
		"image_received_stock_update": "Image received! Processing for stock update...",
		"stock_update_success":        "✅ Stock updated successfully for: {updates}.",
		"stock_update_fail":           "❌ Failed to update stock from image. Error: {error_msg}",
		"total_expense_recorded":      "Total expense of ₹{amount} recorded.",
		"unprocessed_items":           "❌ Some items were not processed:\n{items}",
		"item_not_in_stock":           "'{item_name}' is not in stock. Sale not recorded.",
		"low_stock_alert":             "⚠️ Low stock alert! The following items are running low:\n{low_stock_items_list}\nPlease consider ordering soon.",
		"supplier_not_found":          "Supplier '{supplier_name}' not found.",
		"order_calling":               "Calling {supplier_name} to place the following order:\n- {order_details}",
		"order_confirmed":             "✅ Order for {quantity} {unit} of {item_name} from {supplier_name} confirmed and stock updated. Expected delivery in 2 days.",
		"order_failed":                "❌ Failed to confirm order for {item_name} from {supplier_name}. Reason: {reason}",
	},
	LangHindi: {
		"sale_success":                "✅ ₹{amount} की बिक्री दर्ज की गई:\n{item_details}",
		"expense_success":             "✅ आपके डिजिटल खाते में ₹{amount} ({item}) का खर्च दर्ज किया गया।",
		"expense_success_no_item":     "✅ आपके डिजिटल खाते में ₹{amount} का खर्च दर्ज किया गया।",
		"balance_inquiry":             "📊 आपके डिजिटल खाते में वर्तमान शेष राशि ₹{balance} है।\n\nपिछले लेनदेन:\n{transactions_summary}",
		"earnings_summary":            "📈 आज की कुल बिक्री: ₹{total_sales}।\n\nआज के लेनदेन:\n{sales_details}",
		"extract_fail":                "आपके संदेश से जानकारी नहीं निकाली जा सकी। कृपया अधिक विशिष्ट रहें (उदाहरण के लिए, '50 रुपये में 1 किलो चीनी बेची')।",
		"transcribe_fail":             "आपके वॉइस नोट को समझा नहीं जा सका। ऑडियो गुणवत्ता खराब हो सकती है या यह समर्थित भाषा में नहीं है।",
		"download_fail":               "आपका वॉइस नोट डाउनलोड नहीं हो सका: {error_msg}। कृपया पुनः प्रयास करें।",
		"file_error":                  "मीडिया फ़ाइल में समस्या थी: {error_msg}। कृपया इसे फिर से भेजें।",
		"unexpected_error":            "एक अप्रत्याशित त्रुटि हुई। कृपया पुनः प्रयास करें।",
		"unsupported_media":           "असमर्थित मीडिया प्रकार: {media_type}। कृपया एक वॉइस नोट या एक इमेज भेजें।",
		"no_transactions_found":       "कोई हालिया लेनदेन नहीं मिला।",
		"no_sales_found_today":        "आज कोई बिक्री दर्ज नहीं की गई।",
		"image_received_stock_update": "छवि प्राप्त हुई! स्टॉक अपडेट के लिए प्रसंस्करण हो रहा है...",
		"stock_update_success":        "✅ स्टॉक सफलतापूर्वक अपडेट किया गया: {updates}.",
		"stock_update_fail":           "❌ छवि से स्टॉक अपडेट करने में विफल। त्रुटि: {error_msg}",
		"total_expense_recorded":      "कुल ₹{amount} का खर्च दर्ज किया गया।",
		"unprocessed_items":           "❌ कुछ आइटम संसाधित नहीं हुए:\n{items}",
		"item_not_in_stock":           "'{item_name}' आइटम स्टॉक में नहीं मिला। बिक्री दर्ज नहीं की गई।",
		"low_stock_alert":             "⚠️ कम स्टॉक चेतावनी! निम्नलिखित आइटम कम हो रहे हैं:\n{low_stock_items_list}\nजल्द ही ऑर्डर करने पर विचार करें।",
		"supplier_not_found":          "आपूर्तिकर्ता '{supplier_name}' नहीं मिला।",
		"order_calling":               "{supplier_name} को ऑर्डर देने के लिए कॉल किया जा रहा है:\n- {order_details}",
		"order_confirmed":             "✅ {item_name} के {quantity} {unit} का {supplier_name} से ऑर्डर पुष्ट हो गया है। स्टॉक अपडेट कर दिया गया है। डिलीवरी 2 दिनों में अपेक्षित है।",
		"order_failed":                "❌ {item_name} का {supplier_name} से ऑर्डर पुष्ट करने में विफल। कारण: {reason}",
	},
}
