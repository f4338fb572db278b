package bot

import (
	"fmt"
	"strings"
	"time"

	"warikan/internal/core"
)

const usageHelp = "📖 家計管理Bot 使い方\n\n" +
	"【💳 カード支払い確認】\n" +
	"カード支払い → 今月の支払い額を表示\n" +
	"カード支払い10月 → 10月の支払い額を表示\n" +
	"カード支払い2024年10月 → 指定年月の支払い額を表示\n\n" +
	"【📝 建て替え記録】\n" +
	"建て替え → 記録アプリのURLを表示\n" +
	"建て替え11月 → 11月支払い分の記録を表示\n" +
	"（期間: 9/26〜10/25）\n\n" +
	"【➕ 記録追加】\n" +
	"建て替え追加 夫 1000 ランチ代\n" +
	"建て替え追加 10/30 妻 2000 買い物\n" +
	"フォーマット → 詳しい使い方\n\n" +
	"【🗑️ 記録削除】\n" +
	"削除 ${ID} → 指定IDの記録を削除\n" +
	"（IDは建て替え記録から確認）\n\n" +
	"【ℹ️ その他】\n" +
	"使い方 → このメッセージを表示\n" +
	"フォーマット → 記録追加の詳細"

const addFormatBody = "【フォーマット】\n" +
	"建て替え追加 支払者 金額 メモ\n" +
	"建て替え追加 日付 支払者 金額 メモ\n\n" +
	"【例】\n" +
	"建て替え追加 夫 1000 ランチ代\n" +
	"建て替え追加 10/30 妻 2000 買い物\n\n" +
	"【注意】\n" +
	"- 支払者: 「夫」または「妻」（必須）\n" +
	"- 金額: 数字のみ（必須）\n" +
	"- 日付: MM/DD形式（省略時=今日）\n" +
	"- メモ: 任意のテキスト（必須）"

const (
	deleteUsage     = "❌ 削除するIDを指定してください\n\n使い方: 削除 ${ID}\n例: 削除 1234567890"
	webAppMissing   = "建て替え記録アプリのURLが設定されていません。\nWEB_APP_URL を設定してください。"
	greetingReply   = "hello"
	errorReplyTitle = "エラーが発生しました:"
	noStackTrace    = "スタックトレースなし"
)

// AddFormatHelp is the add-command help, optionally headed by reason.
func AddFormatHelp(reason string) string {
	var b strings.Builder
	b.WriteString("📝 建て替え記録の追加方法\n\n")
	if reason != "" {
		b.WriteString("❌ エラー: " + reason + "\n\n")
	}
	b.WriteString(addFormatBody)
	return b.String()
}

func addedMessage(p core.AdvancePayment) string {
	return fmt.Sprintf("✅ 記録しました\n\n%s %s %s\n%s",
		p.FormattedDate(), p.Payer.Icon(), p.Amount.Format(), p.Memo)
}

func addFailedMessage(err error) string {
	return "❌ 記録の追加に失敗しました\n\n" + err.Error()
}

func deletedMessage(id string) string {
	return "✅ 記録を削除しました\n\nID: " + id
}

func deleteFailedMessage(id string, err error) string {
	return "❌ 記録の削除に失敗しました\n\nID: " + id + "\n\n" + err.Error()
}

func webAppMessage(url string) string {
	if url == "" {
		return webAppMissing
	}
	return "建て替え記録アプリ:\n" + url
}

// BillingCycleReport lists the payments of one statement window with the
// per-party totals and the transfer that evens them out.
func BillingCycleReport(ym core.YearMonth, start, end time.Time, payments []core.AdvancePayment) string {
	if len(payments) == 0 {
		return "【" + ym.Format() + "支払い分】\n建て替え記録がありません。"
	}

	var b strings.Builder
	b.WriteString("📝 建て替え記録\n")
	b.WriteString("【" + ym.Format() + "支払い分】\n")
	b.WriteString("期間: " + start.Format(core.DateLayout) + " 〜 " + end.Format(core.DateLayout) + "\n\n")
	b.WriteString("--- 記録 ---\n")
	for _, p := range payments {
		fmt.Fprintf(&b, "[ID: %s]\n%s %s %s\n%s\n\n", p.ID, p.FormattedDate(), p.Payer.Icon(), p.Amount.Format(), p.Memo)
	}

	imb := core.CalculateImbalance(payments)
	b.WriteString("--- 合計 ---\n")
	b.WriteString("👨 夫: " + imb.HusbandTotal.Format() + "\n")
	b.WriteString("👩 妻: " + imb.WifeTotal.Format() + "\n\n")
	b.WriteString("--- 清算 ---\n")
	if imb.Settled() {
		b.WriteString("差額なし")
	} else {
		owes := *imb.Payer
		owed := owes.Other()
		fmt.Fprintf(&b, "%s %s → %s %s: %s", owes.Icon(), owes, owed.Icon(), owed, imb.HalfAmount().Format())
	}
	return b.String()
}

// ErrorReply renders a failure for the chat; stack may be empty.
func ErrorReply(err error, stack string) string {
	if stack == "" {
		stack = noStackTrace
	}
	return errorReplyTitle + "\n\n" + err.Error() + "\n\nStack:\n" + stack
}
