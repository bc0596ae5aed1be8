package driver

const (
	SaveEntityQuery = `
		MERGE (n:Entity {uuid: $uuid})
		SET n.name = $name,
			n.domain_id = $domain_id,
			n.kind = $kind,
			n.description = $description,
			n.properties = $properties,
			n.x = $x,
			n.y = $y,
			n.is_ai_suggested = $is_ai_suggested,
			n.created_at = $created_at
		RETURN n.uuid AS uuid
	`

	SaveRelationshipQuery = `
		MATCH (source:Entity {uuid: $source_entity_id})
		MATCH (target:Entity {uuid: $target_entity_id})
		MERGE (source)-[e:RELATES_TO {uuid: $uuid}]->(target)
		SET e.name = $name,
			e.domain_id = $domain_id,
			e.kind = $kind,
			e.description = $description,
			e.cardinality = $cardinality,
			e.is_ai_suggested = $is_ai_suggested,
			e.created_at = $created_at
		RETURN e.uuid AS uuid
	`

	DeleteEntityQuery = `
		MATCH (n:Entity {uuid: $uuid, domain_id: $domain_id})
		DETACH DELETE n
	`

	DeleteRelationshipQuery = `
		MATCH ()-[e:RELATES_TO {uuid: $uuid}]->()
		WHERE e.domain_id = $domain_id
		DELETE e
	`

	GetDomainEntitiesQuery = `
		MATCH (n:Entity {domain_id: $domain_id})
		RETURN n.uuid AS uuid, n.name AS name, n.kind AS kind,
			n.description AS description, n.properties AS properties,
			n.x AS x, n.y AS y
		ORDER BY n.created_at
	`

	GetDomainRelationshipsQuery = `
		MATCH (n:Entity {domain_id: $domain_id})-[e:RELATES_TO]->(m:Entity {domain_id: $domain_id})
		RETURN e.uuid AS uuid, e.name AS name, e.kind AS kind,
			e.cardinality AS cardinality, e.description AS description,
			n.uuid AS source_entity_id, m.uuid AS target_entity_id
		ORDER BY e.created_at
	`
)
