package wallet

// Schema contains sql commands to setup the database for the wallet app.
// OTP challenge records are retained after reaching a terminal status
// to preserve an audit trail.
const Schema = `
CREATE TABLE IF NOT EXISTS account (
	id VARCHAR(26) PRIMARY KEY,
	did VARCHAR(255) UNIQUE NULL,
	phone VARCHAR(20) UNIQUE NULL,
	email VARCHAR(255) UNIQUE NULL,
	name VARCHAR(254) NOT NULL DEFAULT '',
	is_email_verified BOOLEAN DEFAULT false,
	is_phone_verified BOOLEAN DEFAULT false,
	is_webauthn_allowed BOOLEAN DEFAULT false,
	last_login_at TIMESTAMP WITH TIME ZONE NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT current_timestamp,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT current_timestamp
);
CREATE TABLE IF NOT EXISTS webauthn_credential (
	id VARCHAR(26) PRIMARY KEY,
	account_id VARCHAR(26) REFERENCES account(id) ON DELETE CASCADE NOT NULL,
	credential_id BYTEA UNIQUE NOT NULL,
	public_key BYTEA NOT NULL,
	aaguid BYTEA NOT NULL,
	sign_count BIGINT DEFAULT 0,
	transports VARCHAR(100) NOT NULL DEFAULT '',
	name VARCHAR(30) NOT NULL DEFAULT '',
	last_used_at TIMESTAMP WITH TIME ZONE NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT current_timestamp,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT current_timestamp
);
CREATE TABLE IF NOT EXISTS otp_challenge (
	id VARCHAR(26) PRIMARY KEY,
	recipient VARCHAR(255) NOT NULL,
	delivery VARCHAR(10) NOT NULL,
	purpose VARCHAR(20) NOT NULL,
	code_hash VARCHAR(130) NOT NULL,
	account_id VARCHAR(26) REFERENCES account(id) NULL,
	status VARCHAR(10) NOT NULL DEFAULT 'pending',
	attempts INT DEFAULT 0,
	max_attempts INT DEFAULT 3,
	expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
	verified_at TIMESTAMP WITH TIME ZONE NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT current_timestamp,
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT current_timestamp
);
CREATE INDEX IF NOT EXISTS otp_challenge_recipient_idx
	ON otp_challenge (recipient, status);
`
