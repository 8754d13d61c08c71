package email

const subjectDailySummaryFmt = "Resumo diário de leads: %s"
