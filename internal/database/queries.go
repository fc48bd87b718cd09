package database

const (
	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (id, owner_name, contact, currency, balance, merchant, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'active', ?, ?)`

	queryInsertPlatformAccount = `
		INSERT OR IGNORE INTO accounts (id, owner_name, contact, currency, balance, merchant, status)
		VALUES (?, 'Platform Fee Income', '', 'INR', '0', 0, 'active')`

	queryGetAccountByID = `
		SELECT id, owner_name, contact, currency, balance, merchant, status, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	queryGetAccountByUpiID = `
		SELECT a.id, a.owner_name, a.contact, a.currency, a.balance, a.merchant, a.status, a.created_at, a.updated_at
		FROM accounts a
		JOIN upi_handles h ON h.account_id = a.id
		WHERE h.upi_id = ? AND a.status = 'active'`

	queryListAccounts = `
		SELECT id, owner_name, contact, currency, balance, merchant, status, created_at, updated_at
		FROM accounts
		ORDER BY created_at`

	queryInsertHandle = `
		INSERT INTO upi_handles (upi_id, account_id) VALUES (?, ?)`

	// Payment queries
	queryInsertTransaction = `
		INSERT INTO upi_transactions (
			id, sender_upi_id, receiver_upi_id, amount, processing_fee, merchant_fee,
			reference, note, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryInsertLeg = `
		INSERT INTO transaction_legs (id, transaction_id, account_id, amount, kind, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetAccountBalanceTx = `
		SELECT balance FROM accounts WHERE id = ?`

	queryUpdateAccountBalanceTx = `
		UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ?`

	queryCompleteTransaction = `
		UPDATE upi_transactions
		SET status = ?, network_reference = ?, completed_at = ?
		WHERE id = ?`

	queryFailTransaction = `
		UPDATE upi_transactions
		SET status = ?, failure_reason = ?, completed_at = ?
		WHERE id = ?`

	queryUpdateLegStatuses = `
		UPDATE transaction_legs SET status = ? WHERE transaction_id = ?`

	queryGetTransaction = `
		SELECT id, sender_upi_id, receiver_upi_id, amount, processing_fee, merchant_fee,
		       reference, note, status, failure_reason, network_reference, created_at, completed_at
		FROM upi_transactions
		WHERE id = ?`

	queryGetLegsByTransaction = `
		SELECT id, transaction_id, account_id, amount, kind, status, created_at
		FROM transaction_legs
		WHERE transaction_id = ?
		ORDER BY created_at, id`

	queryListLegsByAccount = `
		SELECT id, transaction_id, account_id, amount, kind, status, created_at
		FROM transaction_legs
		WHERE account_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	queryDailyCompletedAmounts = `
		SELECT amount
		FROM upi_transactions
		WHERE sender_upi_id = ? AND status = ? AND created_at >= ? AND created_at < ?`
)
