package pipeline

import "legacyshift/internal/types"

// profile holds everything that differs between families. Stage
// instructions are rendered from it once, when the registry is built.
type profile struct {
	Family types.Family
	// Legacy and Target name the source and destination stacks.
	Legacy string
	Target string
	// Units describes what a cohesive feature slice looks like.
	Units string
	// Grouping lists the relationships to trace when grouping files.
	Grouping []string
	// Context lists what the analyst must extract beyond the common fields.
	Context []string
	// Transform lists the conversion rules, including output path layout.
	Transform []string
	// Tests names the test stack and rules.
	Tests []string
	// Scaffold lists the project files a runnable target needs.
	Scaffold []string
	// MergeLanguages names the languages the merge stage may see.
	MergeLanguages string
}

var profiles = map[types.Family]profile{
	types.FamilyAngularJS: {
		Family: types.FamilyAngularJS,
		Legacy: "AngularJS 1.x",
		Target: "Angular 18+ standalone components with TypeScript and RxJS",
		Units:  "a view template with its controller, the services it injects and its route definition",
		Grouping: []string{
			"Trace `angular.module(...).controller/service/factory/directive` registrations to the templates that reference them.",
			"Follow `$routeProvider` / `$stateProvider` configuration from route to controller and template.",
			"Services injected into several controllers belong to their own group.",
		},
		Context: []string{
			"List every `$http` call as an endpoint (url, method, parameters, return shape).",
			"Record scope-bound data structures as data models.",
			"Suggest replacements for legacy libraries, e.g. `angular-route` -> `@angular/router`, `$http` -> `HttpClient`.",
		},
		Transform: []string{
			"Convert each controller and template into a `standalone` component with `templateUrl` and typed properties.",
			"Convert services and factories into `@Injectable({providedIn: 'root'})` classes returning Observables.",
			"Write every file under `src/app/` using kebab-case file names (`user-list.component.ts`).",
		},
		Tests: []string{
			"Use Jasmine with the Angular TestBed; mock HTTP with `HttpTestingController`.",
			"Place each spec next to the file it tests with the `.spec.ts` suffix.",
		},
		Scaffold: []string{
			"`package.json`, `angular.json`, `tsconfig.json`, `tsconfig.app.json`, `tsconfig.spec.json`.",
			"`src/main.ts`, `src/index.html`, `src/styles.css`, `src/app/app.config.ts`, `src/app/app.routes.ts`, `src/app/app.component.ts`.",
			"Register a route for every converted component found in `all_output_paths`.",
		},
		MergeLanguages: "TypeScript, HTML and CSS",
	},
	types.FamilyJaxRS: {
		Family: types.FamilyJaxRS,
		Legacy: "JAX-RS / Java EE",
		Target: "Spring Boot 3 with Java 21",
		Units:  "a `@Path` resource class with its injected services and the DTOs or entities in its signatures",
		Grouping: []string{
			"Start from classes annotated with `@Path` and follow `@Inject` / `@EJB` fields to services.",
			"Add data classes used as parameters or return types of resource methods.",
			"A service not used by any resource belongs to its own group.",
		},
		Context: []string{
			"List every resource method as an endpoint (full path, HTTP verb, parameters, return type).",
			"Record JPA entities and DTOs as data models.",
			"Suggest Spring replacements, e.g. `javax.ws.rs` -> `spring-boot-starter-web`, `javax.ejb` -> Spring `@Service`.",
		},
		Transform: []string{
			"Convert resources into `@RestController` classes returning `ResponseEntity`.",
			"Convert EJBs into `@Service` beans with constructor injection; convert DTOs into Java records.",
			"Every file path starts with `src/main/java/` followed by the package directories.",
		},
		Tests: []string{
			"Use JUnit 5, Mockito and `@WebMvcTest` / `MockMvc` for controllers.",
			"Place tests under `src/test/java/` mirroring the package of the class under test.",
		},
		Scaffold: []string{
			"`pom.xml` with the Spring Boot parent and every dependency implied by the library migrations.",
			"`src/main/java/<base package>/Application.java` with `@SpringBootApplication`, base package inferred from `all_output_paths`.",
			"`src/main/resources/application.properties`.",
		},
		MergeLanguages: "Java",
	},
	types.FamilyJSF: {
		Family: types.FamilyJSF,
		Legacy: "JavaServer Faces (JSF)",
		Target: "a stateless Spring Boot 3 REST API plus an Angular 18+ frontend",
		Units:  "an `.xhtml` view with its managed bean and the services the bean uses",
		Grouping: []string{
			"Match `#{bean.property}` expressions in `.xhtml` views to `@ManagedBean` / `@Named` classes.",
			"Follow injected services and the entities they return.",
			"`faces-config.xml` navigation rules belong with the views they connect.",
		},
		Context: []string{
			"Describe each bean action as the REST endpoint it will become.",
			"Record backing-bean state and entities as data models.",
			"Suggest replacements, e.g. `javax.faces` -> Angular components, `javax.ejb` -> Spring `@Service`.",
		},
		Transform: []string{
			"Split each slice into a `@RestController` + `@Service` backend and a standalone Angular component frontend.",
			"Backend files go under `src/main/java/`; frontend files go under `frontend/src/app/`.",
			"The controller never returns view names, only `ResponseEntity` with DTO bodies.",
		},
		Tests: []string{
			"Backend: JUnit 5 + Mockito under `src/test/java/`.",
			"Frontend: Jasmine specs next to each component with the `.spec.ts` suffix.",
		},
		Scaffold: []string{
			"Backend `pom.xml`, `Application.java` and `application.properties`.",
			"Frontend `frontend/package.json`, `frontend/angular.json`, `frontend/tsconfig.json` and the Angular bootstrap files.",
		},
		MergeLanguages: "Java and TypeScript",
	},
	types.FamilyStruts: {
		Family: types.FamilyStruts,
		Legacy: "Struts 1.3 with JSP",
		Target: "a stateless Spring Boot 3 REST API plus an Angular 18+ frontend",
		Units:  "an `Action` with its `ActionForm`, the JSP pages it forwards to and its `struts-config.xml` mapping",
		Grouping: []string{
			"Use `struts-config.xml` action mappings to connect Actions, forms and forwards.",
			"Match JSP `<html:form action=...>` tags to the Action they post to.",
			"Shared utilities and base Actions belong to their own group.",
		},
		Context: []string{
			"Describe each Action path as the REST endpoint it will become.",
			"Record ActionForm beans as data models.",
			"Suggest replacements, e.g. `commons-codec` Base64 -> `java.util.Base64`, `struts-taglib` -> Angular templates.",
		},
		Transform: []string{
			"Convert Actions into `@RestController` methods, forms into Java record DTOs, business logic into `@Service` classes.",
			"Convert JSP pages into standalone Angular components with a service calling the new endpoint.",
			"Backend files go under `src/main/java/`; frontend files go under `frontend/src/app/`.",
		},
		Tests: []string{
			"Backend: JUnit 5, Mockito and `MockMvc` under `src/test/java/`.",
			"Frontend: Jasmine specs with `HttpTestingController` next to each component.",
		},
		Scaffold: []string{
			"Backend `pom.xml`, `Application.java` and `application.properties`.",
			"Frontend `frontend/package.json`, `frontend/angular.json`, `frontend/tsconfig.json`, `frontend/src/main.ts` and `frontend/src/app/app.routes.ts`.",
		},
		MergeLanguages: "Java and TypeScript",
	},
}
