package app

// SQL migrations are embedded in code to keep deployment a single binary.
// Applied in order by runMigrations; never edit a released migration.

var migration001Meetups = `
CREATE TABLE IF NOT EXISTS meetups (
    id TEXT PRIMARY KEY,
    host_id TEXT NOT NULL,
    title TEXT NOT NULL,
    lat DOUBLE PRECISION NOT NULL,
    lon DOUBLE PRECISION NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    scheduled_at TIMESTAMPTZ NOT NULL,
    capacity INTEGER NOT NULL CHECK (capacity >= 1),
    current_participants INTEGER NOT NULL DEFAULT 1,
    status VARCHAR(16) NOT NULL DEFAULT 'open',
    version BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (current_participants BETWEEN 0 AND capacity)
);
CREATE INDEX IF NOT EXISTS idx_meetups_host_id ON meetups(host_id);
CREATE INDEX IF NOT EXISTS idx_meetups_due ON meetups(scheduled_at) WHERE status = 'confirmed';
`

var migration002Participations = `
CREATE TABLE IF NOT EXISTS participations (
    id TEXT PRIMARY KEY,
    meetup_id TEXT NOT NULL REFERENCES meetups(id),
    user_id TEXT NOT NULL,
    status VARCHAR(16) NOT NULL,
    joined_at TIMESTAMPTZ NOT NULL,
    decided_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_participations_active
    ON participations(meetup_id, user_id) WHERE status IN ('pending', 'approved');
CREATE INDEX IF NOT EXISTS idx_participations_user_id ON participations(user_id);
`

var migration003Attendance = `
CREATE TABLE IF NOT EXISTS attendance_records (
    id TEXT PRIMARY KEY,
    meetup_id TEXT NOT NULL REFERENCES meetups(id),
    user_id TEXT NOT NULL,
    method VARCHAR(8) NOT NULL,
    lat DOUBLE PRECISION,
    lon DOUBLE PRECISION,
    distance_meters DOUBLE PRECISION,
    status VARCHAR(16) NOT NULL,
    reason TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_confirmed
    ON attendance_records(meetup_id, user_id) WHERE status = 'confirmed';
CREATE TABLE IF NOT EXISTS noshow_penalties (
    meetup_id TEXT NOT NULL REFERENCES meetups(id),
    user_id TEXT NOT NULL,
    amount BIGINT NOT NULL,
    reason TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (meetup_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_noshow_penalties_user_id ON noshow_penalties(user_id);
`

var migration004Reviews = `
CREATE TABLE IF NOT EXISTS meetup_reviews (
    id TEXT PRIMARY KEY,
    meetup_id TEXT NOT NULL REFERENCES meetups(id),
    reviewer_id TEXT NOT NULL,
    rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
    comment TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    UNIQUE (meetup_id, reviewer_id)
);
CREATE TABLE IF NOT EXISTS peer_reviews (
    id TEXT PRIMARY KEY,
    meetup_id TEXT NOT NULL REFERENCES meetups(id),
    reviewer_id TEXT NOT NULL,
    reviewee_id TEXT NOT NULL,
    rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
    comment TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    UNIQUE (meetup_id, reviewer_id, reviewee_id),
    CHECK (reviewer_id <> reviewee_id)
);
CREATE INDEX IF NOT EXISTS idx_peer_reviews_reviewee ON peer_reviews(reviewee_id);
`

var migration005Points = `
CREATE TABLE IF NOT EXISTS point_accounts (
    user_id TEXT PRIMARY KEY,
    balance BIGINT NOT NULL DEFAULT 0,
    total_earned BIGINT NOT NULL DEFAULT 0,
    total_spent BIGINT NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS point_transactions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    amount BIGINT NOT NULL,
    transaction_type VARCHAR(50) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    idempotency_key TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_point_transactions_user ON point_transactions(user_id, created_at DESC);
`
