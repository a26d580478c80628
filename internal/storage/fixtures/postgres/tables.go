package postgres

const fixturesTable = `
		create table if not exists fixtures (
    	path       varchar                     primary key,
    	body       text                        NOT NULL,
    	updated_at timestamp WITHOUT TIME ZONE NOT NULL DEFAULT (NOW() AT TIME ZONE 'UTC')
	);`
