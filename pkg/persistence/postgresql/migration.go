package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE automations (
				id VARCHAR(255) PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('active', 'inactive')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automations_status ON automations(status);

			CREATE TABLE triggers (
				id VARCHAR(255) PRIMARY KEY,
				automation_id VARCHAR(255) NOT NULL REFERENCES automations(id) ON DELETE CASCADE,
				type VARCHAR(255) NOT NULL,
				options JSONB NOT NULL DEFAULT '{}',
				position INT NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_triggers_automation_id ON triggers(automation_id);
			CREATE INDEX idx_triggers_type ON triggers(type);
		`,
		2: `
			CREATE TABLE logs (
				id VARCHAR(255) PRIMARY KEY,
				type VARCHAR(50) NOT NULL,
				object_id VARCHAR(255) NOT NULL,
				object_type VARCHAR(255) NOT NULL,
				automation_id VARCHAR(255) NOT NULL,
				user_id BIGINT NOT NULL,
				post_id BIGINT,
				title TEXT NOT NULL,
				meta JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_logs_object_type ON logs(object_type);
			CREATE INDEX idx_logs_user_id ON logs(user_id);
			CREATE INDEX idx_logs_created_at ON logs(created_at);
		`,
	}
}
