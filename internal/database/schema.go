package database

import (
	"context"
	"database/sql"
	"log"
	"strings"
)

// schemaStmts holds the full DDL, one statement per table.
var schemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS perfiles (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			nombre VARCHAR(50) NOT NULL UNIQUE
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS tipos_planes (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			nombre VARCHAR(100) NOT NULL UNIQUE,
			duracion_dias INT NOT NULL DEFAULT 30
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS planes (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			nombre VARCHAR(100) NOT NULL,
			precio DOUBLE NOT NULL DEFAULT 0,
			clases_mensuales INT NOT NULL DEFAULT 999,
			tipo_plan_id INT UNSIGNED NULL,
			CONSTRAINT fk_planes_tipo FOREIGN KEY (tipo_plan_id)
				REFERENCES tipos_planes(id) ON DELETE SET NULL
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS usuarios (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			dni VARCHAR(20) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL DEFAULT '',
			nombre_completo VARCHAR(150) NOT NULL,
			email VARCHAR(150) NULL,
			perfil_id INT UNSIGNED NULL,
			plan_id INT UNSIGNED NULL,
			estado_cuenta VARCHAR(20) NOT NULL DEFAULT 'Al día',
			fecha_ultima_renovacion DATE NULL,
			fecha_vencimiento DATE NULL,
			clases_restantes INT NULL,
			especialidad VARCHAR(100) NULL,
			peso DOUBLE NULL,
			altura DOUBLE NULL,
			imc DOUBLE NULL,
			fecha_nacimiento DATE NULL,
			apto_medico TINYINT(1) NOT NULL DEFAULT 0,
			fecha_apto_medico DATE NULL,
			fecha_creacion DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_email (email),
			CONSTRAINT fk_usuarios_perfil FOREIGN KEY (perfil_id)
				REFERENCES perfiles(id),
			CONSTRAINT fk_usuarios_plan FOREIGN KEY (plan_id)
				REFERENCES planes(id) ON DELETE SET NULL
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS clases (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			nombre VARCHAR(100) NOT NULL,
			profesor VARCHAR(100) NOT NULL DEFAULT '',
			color VARCHAR(20) NOT NULL DEFAULT '#3b82f6',
			capacidad_max INT NOT NULL DEFAULT 20
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS clase_horarios (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			clase_id INT UNSIGNED NOT NULL,
			dia VARCHAR(10) NOT NULL,
			horario DOUBLE NOT NULL,
			CONSTRAINT fk_horarios_clase FOREIGN KEY (clase_id)
				REFERENCES clases(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS reservas (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			usuario_id INT UNSIGNED NOT NULL,
			clase_id INT UNSIGNED NOT NULL,
			dia VARCHAR(10) NOT NULL,
			horario DOUBLE NOT NULL,
			fecha DATE NOT NULL,
			UNIQUE KEY uq_reserva (usuario_id, clase_id, dia, horario),
			CONSTRAINT fk_reservas_usuario FOREIGN KEY (usuario_id)
				REFERENCES usuarios(id) ON DELETE CASCADE,
			CONSTRAINT fk_reservas_clase FOREIGN KEY (clase_id)
				REFERENCES clases(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS caja (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			tipo VARCHAR(10) NOT NULL,
			monto DOUBLE NOT NULL,
			descripcion TEXT NOT NULL,
			metodo_pago VARCHAR(50) NOT NULL DEFAULT 'Efectivo',
			fecha DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS accesos (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			nombre VARCHAR(150) NOT NULL,
			dni VARCHAR(20) NOT NULL,
			rol VARCHAR(50) NOT NULL,
			metodo VARCHAR(20) NOT NULL DEFAULT 'QR',
			resultado VARCHAR(200) NOT NULL,
			autorizado TINYINT(1) NOT NULL,
			fecha DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS stock (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			nombre_producto VARCHAR(100) NOT NULL,
			precio_venta DOUBLE NOT NULL,
			stock_actual INT NOT NULL DEFAULT 0,
			stock_inicial INT NOT NULL DEFAULT 0,
			imagen_url VARCHAR(300) NULL
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS grupos_musculares (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			nombre VARCHAR(100) NOT NULL UNIQUE
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS ejercicios (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			nombre VARCHAR(150) NOT NULL,
			grupo_muscular_id INT UNSIGNED NULL,
			CONSTRAINT fk_ejercicios_grupo FOREIGN KEY (grupo_muscular_id)
				REFERENCES grupos_musculares(id) ON DELETE SET NULL
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS rutina_planes (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			usuario_id INT UNSIGNED NOT NULL,
			nombre VARCHAR(150) NOT NULL,
			descripcion TEXT NULL,
			objetivo VARCHAR(200) NULL,
			fecha_creacion DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			fecha_vencimiento DATE NULL,
			activo TINYINT(1) NOT NULL DEFAULT 1,
			CONSTRAINT fk_rutinas_usuario FOREIGN KEY (usuario_id)
				REFERENCES usuarios(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS rutina_dias (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			plan_id INT UNSIGNED NOT NULL,
			nombre VARCHAR(100) NOT NULL,
			orden INT NOT NULL DEFAULT 0,
			CONSTRAINT fk_rutina_dias_plan FOREIGN KEY (plan_id)
				REFERENCES rutina_planes(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS rutina_ejercicios (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			dia_id INT UNSIGNED NOT NULL,
			ejercicio_id INT UNSIGNED NOT NULL,
			orden INT NOT NULL DEFAULT 0,
			CONSTRAINT fk_rutina_ej_dia FOREIGN KEY (dia_id)
				REFERENCES rutina_dias(id) ON DELETE CASCADE,
			CONSTRAINT fk_rutina_ej_lib FOREIGN KEY (ejercicio_id)
				REFERENCES ejercicios(id)
		) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS rutina_series (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			rutina_ejercicio_id INT UNSIGNED NOT NULL,
			numero INT NOT NULL,
			repeticiones INT NOT NULL DEFAULT 0,
			peso DOUBLE NOT NULL DEFAULT 0,
			descanso INT NOT NULL DEFAULT 0,
			CONSTRAINT fk_series_ejercicio FOREIGN KEY (rutina_ejercicio_id)
				REFERENCES rutina_ejercicios(id) ON DELETE CASCADE
		) ENGINE=InnoDB`,
}

// EnsureSchema creates every table the service needs if it does not exist
// yet and then applies the startup patches for databases migrated from
// older deployments. It is safe to run on every boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, q := range schemaStmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	dropLegacyBookingIndexes(ctx, db)
	ensureEmailIndex(ctx, db)
	seedProfiles(ctx, db)
	return nil
}

// dropLegacyBookingIndexes removes uniqueness constraints left behind by
// earlier deployments of the reservas table. Older revisions keyed the
// unique index on (usuario_id, clase_id, dia, horario, fecha) or on
// (usuario_id, clase_id) alone; both break the current booking rules.
// Absence of the index is expected on fresh databases.
func dropLegacyBookingIndexes(ctx context.Context, db *sql.DB) {
	for _, idx := range []string{"uq_reserva_fecha", "uq_usuario_clase", "reservas_usuario_clase_key"} {
		if _, err := db.ExecContext(ctx, "ALTER TABLE reservas DROP INDEX "+idx); err != nil {
			if !strings.Contains(err.Error(), "1091") { // 1091 = can't drop, doesn't exist
				log.Printf("schema: drop legacy index %s: %v", idx, err)
			}
		}
	}
}

// ensureEmailIndex adds the unique email index to usuarios tables created
// before it existed. CREATE TABLE IF NOT EXISTS never alters an existing
// table, so migrated databases need the explicit ALTER. MySQL allows any
// number of NULL emails under a unique index. 1061 means the index is
// already there; 1062 means the old data holds duplicate emails and needs
// manual cleanup before the rule can be enforced.
func ensureEmailIndex(ctx context.Context, db *sql.DB) {
	_, err := db.ExecContext(ctx, "ALTER TABLE usuarios ADD UNIQUE KEY uq_email (email)")
	if err != nil && !strings.Contains(err.Error(), "1061") {
		log.Printf("schema: add unique email index: %v", err)
	}
}

// seedProfiles inserts the three role tags when missing so a fresh install
// can create users immediately.
func seedProfiles(ctx context.Context, db *sql.DB) {
	for _, nombre := range []string{"Alumno", "Profesor", "Administrativo"} {
		if _, err := db.ExecContext(ctx,
			"INSERT IGNORE INTO perfiles (nombre) VALUES (?)", nombre); err != nil {
			log.Printf("schema: seed perfil %s: %v", nombre, err)
		}
	}
}
